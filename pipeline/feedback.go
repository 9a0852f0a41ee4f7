package pipeline

import "log"

// Feedback is the host callback surface. The pipelines report progress and
// log lines through it and poll Canceled between records; a canceled run
// stops early and returns whatever was accumulated.
type Feedback interface {
	Info(msg string)
	ReportError(msg string)
	Progress(pct int)
	Canceled() bool
}

// NopFeedback discards everything and never cancels.
type NopFeedback struct{}

func (NopFeedback) Info(string)        {}
func (NopFeedback) ReportError(string) {}
func (NopFeedback) Progress(int)       {}
func (NopFeedback) Canceled() bool     { return false }

// LogFeedback writes feedback to the standard logger, optionally prefixed
// (the server uses the run id as prefix). It never cancels.
type LogFeedback struct {
	Prefix string
}

func (f LogFeedback) Info(msg string) {
	if f.Prefix != "" {
		log.Printf("[%s] %s", f.Prefix, msg)
		return
	}
	log.Print(msg)
}

func (f LogFeedback) ReportError(msg string) {
	if f.Prefix != "" {
		log.Printf("[%s] ERROR: %s", f.Prefix, msg)
		return
	}
	log.Printf("ERROR: %s", msg)
}

func (LogFeedback) Progress(int)   {}
func (LogFeedback) Canceled() bool { return false }
