package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// The internal leveled logger backend
var leveledBackend logging.LeveledBackend

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})

	// IsEnabledFor reports whether records at level would be logged,
	// letting callers skip computing expensive log arguments.
	IsEnabledFor(level Level) bool
}

// moduleLogger translates the level type in the enabled check; the
// print methods come straight from the backend logger.
type moduleLogger struct {
	*logging.Logger
}

func (l moduleLogger) IsEnabledFor(level Level) bool {
	return l.Logger.IsEnabledFor(backendLevel(level))
}

// Create a new named logger.
func New(name string) Logger {
	return moduleLogger{logging.MustGetLogger(name)}
}

// Override the backend output sink. Log output goes to stderr by default so
// that command output (stat tables, file paths) can be piped cleanly.
func SetSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	leveledBackend.SetLevel(logging.INFO, "")
	logging.SetBackend(leveledBackend)
}

func backendLevel(level Level) logging.Level {
	var loggerLevel logging.Level

	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	}

	return loggerLevel
}

// Set logger verbosity.
func SetLevel(level Level) {
	leveledBackend.SetLevel(backendLevel(level), "")
}

func init() {
	SetSink(os.Stderr)
	SetLevel(Notice)
}
