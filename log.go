package pegtree

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the logrus logger used by runs, writing to out at
// the given level ("debug", "info", "warn", ...).
func NewLogger(out io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return logger, nil
}

// defaultLogger is what runners log to without WithLogger: out, or
// os.Stderr, at level.  An unknown level turns logging off.
func defaultLogger(out io.Writer, level string) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger, err := NewLogger(out, level)
	if err != nil {
		return discardLogger()
	}
	return logger
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
