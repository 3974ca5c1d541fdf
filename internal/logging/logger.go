// Package logging holds the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Log is the logger shared by every package of the module. It is usable
// without calling Init; Init only changes level and format.
var Log = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Init configures Log from LOG_LEVEL and LOG_FORMAT.
func Init() {
	level, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		level = "info"
	}
	Configure(level, os.Getenv("LOG_FORMAT"))
}

// Configure sets the level ("debug", "info", ...) and format ("json" or
// "text"). An unparsable level falls back to info.
func Configure(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

var (
	silenceMu sync.Mutex
	silenced  int
	silentOut io.Writer
)

// Silence redirects Log to io.Discard and returns a function restoring the
// previous output. Calls nest: output comes back when the last restore of
// overlapping calls runs, in whatever order they run. Restore is idempotent.
func Silence() (restore func()) {
	silenceMu.Lock()
	if silenced == 0 {
		silentOut = Log.Out
		Log.SetOutput(io.Discard)
	}
	silenced++
	silenceMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			silenceMu.Lock()
			defer silenceMu.Unlock()
			silenced--
			if silenced == 0 {
				Log.SetOutput(silentOut)
				silentOut = nil
			}
		})
	}
}

// WithComponent returns an entry tagged with the component name, the way
// log lines of one subsystem are grouped.
func WithComponent(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
