package logger

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	WarnLog  *log.Logger
	DebugLog *log.Logger
	logFile  *os.File
	level    = INFO
	initOnce sync.Once
)

const (
	INFO = iota
	DEBUG
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// InitLogger initializes the logger with a file output and console output
func InitLogger(filename string, lvl int) error {
	var err error
	logFile, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	initOnce.Do(func() {})
	setWriters(io.MultiWriter(os.Stdout, logFile), io.MultiWriter(os.Stderr, logFile))
	level = lvl
	return nil
}

// SetOutput sends every level to w. Tests use it to capture or silence logs.
func SetOutput(w io.Writer) {
	initOnce.Do(func() {})
	setWriters(w, w)
}

// SetLevel switches between INFO and DEBUG.
func SetLevel(lvl int) {
	level = lvl
}

func setWriters(out, errOut io.Writer) {
	InfoLog = log.New(out, "INFO: ", flags)
	WarnLog = log.New(out, "WARN: ", flags)
	DebugLog = log.New(out, "DEBUG: ", flags)
	ErrorLog = log.New(errOut, "ERROR: ", flags)
}

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Init sets up console loggers. It is called lazily by the helpers below.
func Init() {
	initOnce.Do(func() {
		setWriters(os.Stdout, os.Stderr)
	})
}

func Info(format string, v ...interface{}) {
	emit(&InfoLog, format, v...)
}

func Infof(format string, v ...interface{}) {
	emit(&InfoLog, format, v...)
}

func Error(format string, v ...interface{}) {
	emit(&ErrorLog, format, v...)
}

func Errorf(format string, v ...interface{}) {
	emit(&ErrorLog, format, v...)
}

func Warn(format string, v ...interface{}) {
	emit(&WarnLog, format, v...)
}

func Warnf(format string, v ...interface{}) {
	emit(&WarnLog, format, v...)
}

// Debugf logs only when the level is DEBUG.
func Debugf(format string, v ...interface{}) {
	if level < DEBUG {
		return
	}
	emit(&DebugLog, format, v...)
}
