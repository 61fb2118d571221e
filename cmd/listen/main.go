// listen is a microphone smoke test: it opens the configured input
// device, runs endpointing, and prints every captured utterance.
// With --transcribe it also sends each utterance through Whisper.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hubirobotics/go-tobias/internal/config"
	"github.com/hubirobotics/go-tobias/internal/log"
	"github.com/hubirobotics/go-tobias/pkg/audiodev"
	"github.com/hubirobotics/go-tobias/pkg/endpoint"
	"github.com/hubirobotics/go-tobias/pkg/transcribe"
	"github.com/hubirobotics/go-tobias/pkg/vad"
)

func main() {
	mic := flag.String("mic", config.MicDevice(), "Microphone name substring")
	doTranscribe := flag.Bool("transcribe", false, "Transcribe each utterance with Whisper")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	if err := run(*mic, *doTranscribe); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(mic string, doTranscribe bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	host, err := audiodev.NewPortAudioHost(log.L())
	if err != nil {
		return err
	}
	defer host.Close()

	dev, err := audiodev.Select(host, mic)
	if err != nil {
		return err
	}

	rates := audiodev.ProbeRates(host, dev, 1)
	rate := vad.NearestRate(audiodev.MaxRate(rates, 16000))
	fmt.Printf("device: %s  rate: %d Hz\n", dev.Name, rate)

	classifier, err := vad.NewWebRTC(vad.ModeVeryAggressive)
	if err != nil {
		return err
	}

	var dispatcher transcribe.Dispatcher
	if doTranscribe {
		dispatcher, err = transcribe.NewWhisper(os.Getenv(config.EnvOpenAIKey))
		if err != nil {
			return err
		}
		defer dispatcher.Close()
	}

	var cancelFlag endpoint.CancelFlag
	ep := endpoint.New(host, dev, rate, classifier, &cancelFlag,
		endpoint.WithSilenceLimit(config.SilenceLimit()))

	fmt.Println("listening, speak into the microphone (ctrl-c to quit)")
	for {
		u, err := ep.Listen(ctx)
		switch {
		case errors.Is(err, endpoint.ErrCancelled):
			return nil
		case errors.Is(err, endpoint.ErrNoSpeech):
			continue
		case err != nil:
			return err
		}

		fmt.Printf("utterance: %.2fs, %d frames\n", u.Duration().Seconds(), u.FrameCount())
		if dispatcher != nil {
			res, err := dispatcher.Submit(ctx, u)
			if errors.Is(err, transcribe.ErrNoSpeech) {
				fmt.Println("  (no speech recognized)")
				continue
			}
			if err != nil {
				fmt.Println("  transcription failed:", err)
				continue
			}
			fmt.Printf("  %q\n", res.Text)
		}
	}
}
