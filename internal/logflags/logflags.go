package logflags

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var procfs = false
var index = false
var app = false

var logOut io.Writer = io.Discard

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(logOut)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	logger.Level = logrus.DebugLevel
	if !flag {
		logger.Level = logrus.PanicLevel
	}
	return logger.WithFields(fields)
}

// Procfs returns true if kernel interface reads should be logged.
func Procfs() bool {
	return procfs
}

// ProcfsLogger returns a logger for the procfs layer.
func ProcfsLogger() *logrus.Entry {
	return makeLogger(procfs, logrus.Fields{"layer": "procfs"})
}

// Index returns true if page index rebuilds should be logged.
func Index() bool {
	return index
}

// IndexLogger returns a logger for the page index builder.
func IndexLogger() *logrus.Entry {
	return makeLogger(index, logrus.Fields{"layer": "index"})
}

// App returns true if the tick loop should log.
func App() bool {
	return app
}

// AppLogger returns a logger for the tick loop and scheduler.
func AppLogger() *logrus.Entry {
	return makeLogger(app, logrus.Fields{"layer": "app"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// DefaultLogDest is used when --log is given without --log-dest. The terminal
// belongs to the UI, so logs always go to a file.
func DefaultLogDest() string {
	return filepath.Join(os.TempDir(), "pagemon.log")
}

// Setup enables the layers named in logstr and opens logDest. The returned
// closer must be called on exit.
func Setup(logFlag bool, logstr, logDest string) (io.Closer, error) {
	procfs, index, app = false, false, false
	logOut = io.Discard
	if !logFlag {
		if logstr != "" {
			return nopCloser{}, errLogstrWithoutLog
		}
		return nopCloser{}, nil
	}
	if logstr == "" {
		logstr = "app,index"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		switch strings.TrimSpace(logcmd) {
		case "procfs":
			procfs = true
		case "index":
			index = true
		case "app":
			app = true
		}
	}
	if logDest == "" {
		logDest = DefaultLogDest()
	}
	f, err := os.OpenFile(logDest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nopCloser{}, err
	}
	logOut = f
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
