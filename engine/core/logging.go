package core

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
	assertions bool
}

var singleton *logger

func getLogger() *logger {
	if singleton == nil {
		once.Do(
			func() {
				l := log.NewWithOptions(os.Stderr, log.Options{
					ReportCaller:    true,
					ReportTimestamp: true,
					TimeFormat:      time.RFC3339,
					CallerOffset:    1,
					Prefix:          "Prism 🔺",
				})
				l.SetLevel(log.InfoLevel)
				singleton = &logger{Logger: l}
			})
	}
	return singleton
}

// SetLogLevel accepts the charmbracelet level names (debug, info, warn, error, fatal).
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// EnableAssertions turns Assert failures into error logs.
func EnableAssertions(enabled bool) {
	getLogger().assertions = enabled
}

// Assert logs a programmer error when cond is false and assertions are enabled.
// It never aborts; the caller still returns its failure result.
func Assert(cond bool, msg string, args ...interface{}) bool {
	if !cond && getLogger().assertions {
		getLogger().Errorf("assertion failed: "+msg, args...)
	}
	return cond
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
