package exr

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// logger is the package-wide debug logger.
var logger = &sharedLogger{l: defaultLogger()}

// defaultLogger discards everything unless EXR_DEBUG is set.
func defaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	if v := os.Getenv("EXR_DEBUG"); v != "" && v != "0" {
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

type sharedLogger struct {
	mu sync.RWMutex
	l  logrus.FieldLogger
}

func (s *sharedLogger) get() logrus.FieldLogger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.l
}

func (s *sharedLogger) WithField(key string, value any) *logrus.Entry {
	return s.get().WithField(key, value)
}

func (s *sharedLogger) WithFields(fields logrus.Fields) *logrus.Entry {
	return s.get().WithFields(fields)
}

// SetLogger installs the logger used for debug tracing of stream and file
// operations. Passing nil restores the silent default.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = defaultLogger()
	}
	logger.mu.Lock()
	logger.l = l
	logger.mu.Unlock()
}
