package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/track_recorder/internal/app"
	"github.com/relabs-tech/track_recorder/internal/config"
)

func main() {
	path := os.Getenv("RECORDER_CONFIG")
	if path == "" {
		path = "recorder.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := app.ConfigureLogging(cfg.Log); err != nil {
		log.Fatalf("logging: %v", err)
	}

	log.Println("starting GPS track recorder")
	if err := app.RunRecorder(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
