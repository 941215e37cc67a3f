package logging

import (
	"io"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/2beens/gymsessions/pkg"
)

const (
	DefaultSentryServerName = "gym-sessions"
	DefaultEnvironment      = "development"

	logFileMaxSizeMB  = 50
	logFileMaxBackups = 20
	logFileMaxAgeDays = 180
)

type LoggerSetupParams struct {
	LogFileName      string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger: format, level, sentry error
// reporting and the output (stdout, a rotated log file, or both).
func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if params.SentryEnabled {
		setupSentry(params)
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.LogFileName == "" {
		logrus.SetOutput(os.Stdout)
		logrus.Println("writing logs only to STDOUT")
		return
	}

	fileWriter := newFileWriter(params.LogFileName)
	if params.LogToStdout {
		logrus.Println("writing logs to file and STDOUT")
		logrus.SetOutput(pkg.NewCombinedWriter(os.Stdout, fileWriter))
	} else {
		logrus.SetOutput(fileWriter)
	}
}

func setupSentry(params LoggerSetupParams) {
	if err := sentry.Init(sentryOptions(params)); err != nil {
		logrus.Errorf("sentry.Init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up successfully")
}

func sentryOptions(params LoggerSetupParams) sentry.ClientOptions {
	serverName := params.SentryServerName
	if serverName == "" {
		serverName = DefaultSentryServerName
	}
	environment := params.Environment
	if environment == "" {
		environment = DefaultEnvironment
	}

	return sentry.ClientOptions{
		Dsn:              params.SentryDSN,
		Environment:      environment,
		ServerName:       serverName,
		TracesSampleRate: 1.0,
	}
}

// newFileWriter returns a size rotated writer, timestamps in UTC.
func newFileWriter(fileName string) io.Writer {
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	return &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		LocalTime:  false,
		Compress:   true,
	}
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
