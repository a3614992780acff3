package contract

import (
	"os"

	"github.com/sirupsen/logrus"
)

// logger is the process-wide logger. It writes to stderr so stdout stays free
// for command output and the MCP stdio protocol.
var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Logger returns the process-wide logger.
func Logger() *logrus.Logger {
	return logger
}

// SetLogLevel changes the level of the process-wide logger.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.WithError(err).Error("Fatal " + msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logger.WithError(err).Warn(msg)
}
