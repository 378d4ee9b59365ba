package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ExtropyIO/Fuzzhead/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the fuzzer is created. Each
// module/package should create its own sub-logger. This allows to create unique logging instances depending on the
// use case.
var GlobalLogger = NewLogger(zerolog.Disabled, false)

// Logger describes a custom logging object that can log events to any arbitrary channel and can handle specialized
// output to console as well
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// multiLogger describes a logger that will be used to output logs to any arbitrary channel(s) in structured format.
	multiLogger zerolog.Logger

	// consoleLogger describes a logger that will be used to output unstructured output to console.
	// A separate logger is kept for console so that we can support specialized formatting / custom coloring.
	consoleLogger zerolog.Logger

	// writers describes a list of io.Writer objects where log output will go.
	writers []io.Writer
}

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger will create a new Logger object with a specific log level. The Logger can output to console, if enabled,
// and output logs to any number of arbitrary io.Writer channels
func NewLogger(level zerolog.Level, consoleEnabled bool, writers ...io.Writer) *Logger {
	// The two base loggers are effectively loggers that are disabled. We create instances of them so that we do not
	// get nil pointer dereferences down the line
	baseMultiLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	baseConsoleLogger := zerolog.New(os.Stdout).Level(zerolog.Disabled)

	if len(writers) > 0 {
		baseMultiLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	}

	if consoleEnabled {
		consoleWriter := setupDefaultFormatting(zerolog.ConsoleWriter{Out: os.Stdout}, level)
		baseConsoleLogger = zerolog.New(consoleWriter).Level(level)
	}

	return &Logger{
		level:         level,
		multiLogger:   baseMultiLogger,
		consoleLogger: baseConsoleLogger,
		writers:       writers,
	}
}

// NewSubLogger will create a new Logger with unique context in the form of a key-value pair. The expected use of this
// function is for each package to have their own unique logger so that parsing of logs is "grep-able" based on some key
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	subMultiLogger := l.multiLogger.With().Str(key, value).Logger()
	subConsoleLogger := l.consoleLogger.With().Str(key, value).Logger()
	return &Logger{
		level:         l.level,
		multiLogger:   subMultiLogger,
		consoleLogger: subConsoleLogger,
		writers:       l.writers,
	}
}

// AddWriter will add an unstructured writer to the list of channels where log output will be sent.
func (l *Logger) AddWriter(writer io.Writer) {
	for _, w := range l.writers {
		if writer == w {
			return
		}
	}
	l.writers = append(l.writers, zerolog.ConsoleWriter{Out: writer, NoColor: true})
	l.multiLogger = zerolog.New(zerolog.MultiLevelWriter(l.writers...)).Level(l.level).With().Timestamp().Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.multiLogger = l.multiLogger.Level(level)
	l.consoleLogger = l.consoleLogger.Level(level)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	consoleMsg, fileMsg, fields := buildMsgs(args...)
	l.consoleLogger.Debug().Fields(fields).Msg(consoleMsg)
	l.multiLogger.Debug().Fields(fields).Msg(fileMsg)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	consoleMsg, fileMsg, fields := buildMsgs(args...)
	l.consoleLogger.Info().Fields(fields).Msg(consoleMsg)
	l.multiLogger.Info().Fields(fields).Msg(fileMsg)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	consoleMsg, fileMsg, fields := buildMsgs(args...)
	l.consoleLogger.Warn().Fields(fields).Msg(consoleMsg)
	l.multiLogger.Warn().Fields(fields).Msg(fileMsg)
}

// Error is a wrapper function that will log an error event
func (l *Logger) Error(args ...any) {
	consoleMsg, fileMsg, fields := buildMsgs(args...)
	if l.consoleLogger.GetLevel() <= zerolog.DebugLevel {
		l.consoleLogger.Error().Stack().Fields(fields).Msg(consoleMsg)
	} else {
		l.consoleLogger.Error().Fields(fields).Msg(consoleMsg)
	}
	l.multiLogger.Error().Stack().Fields(fields).Msg(fileMsg)
}

// Panic is a wrapper function that will log a panic event
func (l *Logger) Panic(args ...any) {
	consoleMsg, fileMsg, fields := buildMsgs(args...)
	defer l.multiLogger.Panic().Stack().Fields(fields).Msg(fileMsg)
	l.consoleLogger.Panic().Stack().Fields(fields).Msg(consoleMsg)
}

// buildMsgs takes in a variadic list of arguments of any type and returns two strings and, optionally, a
// StructuredLogInfo object. The first string is a colorized string that can be used for console logging while the
// second is a non-colorized one that can be used for file/structured logging.
func buildMsgs(args ...any) (string, string, StructuredLogInfo) {
	if len(args) == 0 {
		return "", "", nil
	}

	colorCtx := colors.Reset
	consoleOutput := make([]string, 0)
	fileOutput := make([]string, 0)
	var info StructuredLogInfo

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			// A color function switches the current color context
			colorCtx = t
		case StructuredLogInfo:
			// Note that only one structured log info can be provided for each log message
			info = t
		default:
			consoleOutput = append(consoleOutput, colorCtx(t))
			fileOutput = append(fileOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(consoleOutput, " "), strings.Join(fileOutput, " "), info
}

// setupDefaultFormatting will update the console logger's formatting to the fuzzhead standard
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level) zerolog.ConsoleWriter {
	// Get rid of the timestamp for console output
	writer.FormatTimestamp = func(i interface{}) string {
		return ""
	}

	writer.FormatLevel = func(i any) string {
		parsedLevel, err := zerolog.ParseLevel(i.(string))
		if err != nil {
			panic(fmt.Sprintf("unable to parse the log level: %v", err))
		}

		switch parsedLevel {
		case zerolog.TraceLevel:
			return colors.CyanBold(zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colors.BlueBold(zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colors.GreenBold(colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colors.YellowBold(zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colors.RedBold(zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return colors.RedBold(zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return colors.RedBold(zerolog.LevelPanicValue)
		default:
			return i.(string)
		}
	}

	// Above debug level, drop the `module` component from console output
	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}

	return writer
}
