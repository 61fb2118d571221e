// Tobias - voice-driven conversational control loop for a humanoid robot.
// Listens on the microphone, transcribes, reasons with an LLM, then
// speaks and gestures concurrently.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/hubirobotics/go-tobias/internal/config"
	"github.com/hubirobotics/go-tobias/pkg/app"
)

func main() {
	cfg := parseFlags()

	if err := config.CheckRequired(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Init(ctx); err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer a.Shutdown()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}

// parseFlags parses command line flags over environment defaults.
func parseFlags() app.Config {
	cfg := app.DefaultConfig()
	cfg.LoadEnv()

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	port := flag.String("port", cfg.Port, "Web control surface port")
	mic := flag.String("mic", cfg.MicDevice, "Microphone name substring")
	backend := flag.String("transcriber", cfg.Transcriber, "Transcription backend: whisper or google")
	bridge := flag.String("bridge", cfg.BridgeURL, "Robot control bridge URL")
	noAudio := flag.Bool("no-audio", false, "Run the control surface without a microphone")
	noRobot := flag.Bool("no-robot", false, "Disable the actuator and LED bridge")
	autoStart := flag.Bool("auto-start", false, "Begin the interaction loop on boot")
	flag.Parse()

	cfg.Debug = *debug
	cfg.Port = *port
	cfg.MicDevice = *mic
	cfg.Transcriber = *backend
	cfg.BridgeURL = *bridge
	cfg.NoAudio = *noAudio
	cfg.NoRobot = *noRobot
	cfg.AutoStart = *autoStart
	return cfg
}
