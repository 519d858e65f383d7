package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/relabs-tech/track_recorder/internal/config"
)

// ConfigureLogging sets up logrus: colored console output always, plus a
// rotating log file when one is configured.
func ConfigureLogging(cfg config.LogConfig) error {
	log.SetLevel(cfg.LogrusLevel())
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: false})
	log.SetOutput(os.Stdout)

	if cfg.File == "" {
		return nil
	}

	logDir := filepath.Dir(cfg.File)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("creating log directory %s: %w", logDir, err)
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    50,
		MaxBackups: 10,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}

	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	log.AddHook(lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: rotator,
		log.FatalLevel: rotator,
		log.ErrorLevel: rotator,
		log.WarnLevel:  rotator,
		log.InfoLevel:  rotator,
		log.DebugLevel: rotator,
		log.TraceLevel: rotator,
	}, fileFmt))

	return nil
}
