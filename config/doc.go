// Package config loads the application configuration for the CLI and the
// HTTP service.
//
// Configuration is YAML (config.yml in the working directory), validated with
// go-playground/validator. Every key has a sensible default, so the file is
// optional. STRIDE_* environment variables override file values; a .env file
// is honored via godotenv.
//
//	server:
//	  port: 8080
//	  allowedOrigins: ["http://localhost:5173"]
//	  disableMetrics: false
//	api:
//	  baseURL: https://open-bus-stride-api.hasadna.org.il
//	  timeoutMS: 30000
//	  defaultLimit: 1000
package config
