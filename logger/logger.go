package logger

import (
	"github.com/sirupsen/logrus"
)

// Logger is the shared logger instance for the whole client.
var Logger = logrus.New()

// Init configures the logger. Level falls back to info when the
// given string does not parse.
func Init(level string) {
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)
}
