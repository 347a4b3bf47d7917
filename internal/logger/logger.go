package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely the tool logs.
type Options struct {
	Debug bool
	// File, when set, also writes JSON logs to a rotated file.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

func Setup(opts Options) zerolog.Logger {
	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	var out io.Writer = os.Stderr
	if opts.Debug {
		out = zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}
	}

	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, fileWriter(opts))
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()
	if opts.Debug {
		logger = logger.With().Stack().Logger()
	}

	return logger
}

func fileWriter(opts Options) io.Writer {
	maxSize := opts.MaxSizeMB
	if maxSize == 0 {
		maxSize = 10
	}
	maxBackups := opts.MaxBackups
	if maxBackups == 0 {
		maxBackups = 3
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}
}
