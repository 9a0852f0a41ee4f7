package pipeline

// ConfigurationError marks a fatal precondition failure: a required field or
// parameter is missing or invalid. It aborts the run before any fetch.
type ConfigurationError struct{ Msg string }

func (e *ConfigurationError) Error() string { return e.Msg }
