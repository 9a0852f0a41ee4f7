// Package internal holds shared process-level helpers.
package internal

import (
	"log"
	"os"
)

// InitLogging configures the standard logger for the CLI and the service.
func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
