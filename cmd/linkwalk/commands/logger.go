package commands

import (
	"io"

	"github.com/fivetwenty-io/linkwalk/pkg/linkwalk"
	"github.com/sirupsen/logrus"
)

// logrusLogger adapts a logrus entry to linkwalk.Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogger returns a linkwalk.Logger writing text logs to out. Verbose
// enables debug output; otherwise only warnings and errors are shown.
func NewLogger(out io.Writer, verbose bool) linkwalk.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	})

	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return &logrusLogger{entry: logrus.NewEntry(logger)}
}

func (l *logrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}
