// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectrum/cmd"
	"spectrum/internal/config"
	"spectrum/internal/display"
	"spectrum/internal/engine"
	"spectrum/internal/log"
	"spectrum/internal/sampler"
	"spectrum/internal/touch"
	"spectrum/internal/transport"
)

// main runs in three phases:
//
//  1. Startup: parse configuration, pick a sample source, open the
//     terminal display.
//  2. Concurrent: the engine's acquisition and presentation loops run
//     until a termination signal or a quit key arrives.
//  3. Shutdown: stop the loops, finalize any recording, release the
//     terminal and audio subsystems.
func main() {
	cfg, err := cmd.ParseArgs()
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	if cfg.Command != "" {
		// One-off commands print from inside the CLI layer.
		return
	}

	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}

	src, cleanup, err := newSource(cfg)
	if err != nil {
		log.Fatalf("startup: sample source: %v", err)
	}
	defer cleanup()

	term, err := display.NewTerminal()
	if err != nil {
		log.Fatalf("startup: terminal: %v", err)
	}
	defer term.Close()

	// tcell owns the terminal now. Anything written to stderr would
	// corrupt the alternate screen, so logs go to a file or nowhere.
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			term.Close()
			log.Fatalf("startup: log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	// The terminal doubles as the touch peripheral.
	mgr := display.NewManager(term, cfg.Display.Theme,
		time.Duration(cfg.Display.OverlayMs)*time.Millisecond)
	rec := touch.NewRecognizer(term, cfg.Touch)

	var tr transport.Transport
	if cfg.Transport.WebSocketEnabled {
		wst, err := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		if err != nil {
			log.Fatalf("startup: websocket transport: %v", err)
		}
		defer wst.Close()
		tr = wst
	}

	eng, err := engine.New(cfg, src, mgr, rec, tr)
	if err != nil {
		log.Fatalf("startup: engine: %v", err)
	}

	eng.Start()
	if cfg.Capture.Enabled {
		if err := eng.StartRecording(cfg.Capture.OutputFile); err != nil {
			log.Errorf("recording: %v", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sig:
	case <-term.Quit():
	}

	eng.Stop()
}

// newSource builds the configured sample source. The returned cleanup
// releases whatever the source holds open.
func newSource(cfg *config.Config) (sampler.Source, func(), error) {
	switch cfg.Audio.Source {
	case "portaudio":
		if err := sampler.Initialize(); err != nil {
			return nil, nil, err
		}
		pa, err := sampler.NewPortAudioSource(cfg.Audio.DeviceID, float64(cfg.Audio.SampleRate), cfg.Audio.FFTSize)
		if err != nil {
			sampler.Terminate()
			return nil, nil, err
		}
		return pa, func() {
			pa.Close()
			sampler.Terminate()
		}, nil
	case "noise":
		return sampler.NewNoiseSource(uint64(time.Now().UnixNano())), func() {}, nil
	case "sine":
		return sampler.NewSineSource(float64(cfg.Audio.SineHz), float64(cfg.Audio.SampleRate)), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown sample source %q", config.ErrInvalid, cfg.Audio.Source)
	}
}
