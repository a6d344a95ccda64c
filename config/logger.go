package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"statsnap/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// PanicLogName returns location of crash output file next to the log file.
func (conf *LoggingConfig) PanicLogName() string {
	return filepath.Join(filepath.Dir(conf.FileLogger.Destination), misc.GetAppName()+"-panic.log")
}

// Prepare returns program logger. Console output is split: errors go to
// stderr, everything else to stdout. When rpt is not nil file logging is
// forced to debug level and log files are added to the report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	stdout, stderr := consoleCores(conf.ConsoleLogger.Level)

	level, mode := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		level, mode = "debug", "overwrite"
	}

	var (
		fileCore   zapcore.Core = zapcore.NewNopCore()
		redirected string
	)
	if enabler, ok := fileLevel(level); ok {
		capturePanics(conf.PanicLogName(), mode, rpt)

		f, err := openLog(conf.FileLogger.Destination, mode)
		if err != nil {
			if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
				return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
			}
			redirected = f.Name()
		}
		rpt.Store("final.log", f.Name())
		fileCore = zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), enabler)
	}

	log := zap.New(zapcore.NewTee(stderr, stdout, fileCore), zap.AddCaller())
	if redirected != "" {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

func consoleCores(level string) (stdout, stderr zapcore.Core) {
	var low zapcore.Level
	switch level {
	case "normal":
		low = zapcore.InfoLevel
	case "debug":
		low = zapcore.DebugLevel
	default:
		return zapcore.NewNopCore(), zapcore.NewNopCore()
	}

	stdout = zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stdout)), zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return low <= lvl && lvl < zapcore.ErrorLevel
		}))
	stderr = zapcore.NewCore(shortErrors{zapcore.NewConsoleEncoder(consoleEncoderConfig(os.Stderr))}, zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
			return lvl >= zapcore.ErrorLevel
		}))
	return stdout, stderr
}

func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return ec
}

func fileLevel(level string) (zap.AtomicLevel, bool) {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel), true
	case "normal":
		return zap.NewAtomicLevelAt(zap.InfoLevel), true
	}
	return zap.AtomicLevel{}, false
}

func openLog(name, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(name, flags, 0644)
}

// capturePanics directs runtime crash output to a file, falling back to a
// temporary one. Failures are ignored.
func capturePanics(name, mode string, rpt *Report) {
	f, err := openLog(name, mode)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err != nil {
			return
		}
	}
	defer f.Close()
	if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err != nil {
		return
	}
	rpt.Store("panic.log", f.Name())
}

// shortErrors drops verbose error details from console output.
type shortErrors struct {
	zapcore.Encoder
}

func (c shortErrors) Clone() zapcore.Encoder {
	return shortErrors{c.Encoder.Clone()}
}

func (c shortErrors) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			f.Interface = errors.New(f.Interface.(error).Error())
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
