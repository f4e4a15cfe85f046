package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// InitLogger configures both Log and the logrus standard logger, which the
// services and repositories write to.
func InitLogger(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	for _, l := range []*logrus.Logger{Log, logrus.StandardLogger()} {
		// Output to stdout instead of the default stderr
		l.Out = os.Stdout
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(lvl)
	}

	if err != nil {
		Log.WithField("level", level).Warn("Unknown log level, using info")
	}
}
