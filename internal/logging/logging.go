package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger writing to out in the requested format (json or text)
// at the requested level. Unknown levels fall back to info.
func NewLogger(out io.Writer, level string, format string) *logrus.Logger {

	logger := logrus.New()
	logger.SetOutput(out)

	switch strings.ToLower(format) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

//
// end of file
//
