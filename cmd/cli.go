// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spectrum/internal/analysis"
	"spectrum/internal/config"
	"spectrum/internal/sampler"
	"spectrum/pkg/build"
)

// ParseArgs builds the final configuration: defaults, then an optional
// YAML file, then environment overrides, then command-line flags. Flags
// always win because their defaults are seeded from the loaded file.
func ParseArgs() (*config.Config, error) {
	info := build.Get()

	cfg, err := config.Load(configPathArg(os.Args[1:]))
	if err != nil {
		return nil, err
	}

	var configPath string

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         "Real-time audio spectrum analyzer",
		Version:       info.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	bandsCmd := &cobra.Command{
		Use:   "bands",
		Short: "Print the band to frequency mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "bands"
			return printBands(cfg, cmd.OutOrStdout())
		},
	}
	rootCmd.AddCommand(bandsCmd)

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = "devices"
			return printDevices(cmd.OutOrStdout())
		},
	}
	rootCmd.AddCommand(devicesCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "f", "",
		"Path to a YAML configuration file")

	// Sampling
	pf.IntVarP(&cfg.Audio.SampleRate, "rate", "s", cfg.Audio.SampleRate,
		"Sample rate in Hertz (Hz)")
	pf.IntVarP(&cfg.Audio.FFTSize, "fft-size", "n", cfg.Audio.FFTSize,
		"Samples per transform block (power of 2)")
	pf.StringVar(&cfg.Audio.Source, "source", cfg.Audio.Source,
		"Sample source: portaudio, sine or noise")
	pf.IntVarP(&cfg.Audio.DeviceID, "device", "d", cfg.Audio.DeviceID,
		"Input device ID for the portaudio source. Use 'devices' to list them.")
	pf.IntVar(&cfg.Audio.SineHz, "sine-hz", cfg.Audio.SineHz,
		"Tone frequency for the sine source (Hz)")

	// Analysis
	pf.IntVarP(&cfg.Analysis.Bands, "bands", "b", cfg.Analysis.Bands,
		"Number of output frequency bands (4-32)")
	pf.Float64Var(&cfg.Analysis.FreqMin, "freq-min", cfg.Analysis.FreqMin,
		"Low analysis cutoff (Hz)")
	pf.Float64Var(&cfg.Analysis.FreqMax, "freq-max", cfg.Analysis.FreqMax,
		"High analysis cutoff (Hz)")
	pf.Float64VarP(&cfg.Analysis.DisplayGain, "gain", "g", cfg.Analysis.DisplayGain,
		"Display gain divisor (lower = more sensitive)")
	pf.StringVarP(&cfg.Analysis.Window, "window", "w", cfg.Analysis.Window,
		"Window function (hann, hamming, blackman, none, ...)")

	// Presentation
	pf.StringVarP(&cfg.Display.Theme, "theme", "t", cfg.Display.Theme,
		"Initial theme (bars, waterfall, radial, mirror)")
	pf.IntVar(&cfg.Display.FPS, "fps", cfg.Display.FPS,
		"Target frame rate")

	// Recording
	pf.BoolVarP(&cfg.Capture.Enabled, "record", "r", cfg.Capture.Enabled,
		"Record the raw sample stream to a WAV file")
	pf.StringVarP(&cfg.Capture.OutputFile, "output", "o", cfg.Capture.OutputFile,
		"Recording file name. Default is capture-MM-DD-YYYY-HHMMSS.wav")

	// Broadcast
	pf.BoolVar(&cfg.Transport.WebSocketEnabled, "ws", cfg.Transport.WebSocketEnabled,
		"Broadcast spectrum frames over WebSocket")
	pf.StringVar(&cfg.Transport.WebSocketAddr, "ws-addr", cfg.Transport.WebSocketAddr,
		"WebSocket listen address")

	// Debug
	pf.BoolVarP(&cfg.Debug, "verbose", "v", cfg.Debug,
		"Show verbose output")
	pf.StringVar(&cfg.LogFile, "log-file", cfg.LogFile,
		"Write logs to this file. Unset discards logs while the display runs.")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if cfg.Capture.Enabled && cfg.Capture.OutputFile == "" {
		cfg.Capture.OutputFile = "capture-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	// Flags may have replaced already-validated values.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configPathArg extracts the --config value before cobra runs, so the
// file's settings can seed the flag defaults.
func configPathArg(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-f":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-f="):
			return strings.TrimPrefix(arg, "-f=")
		}
	}
	return ""
}

// printDevices lists the host's audio devices. It owns the PortAudio
// lifetime since nothing else is running during a one-off command.
func printDevices(w io.Writer) error {
	if err := sampler.Initialize(); err != nil {
		return err
	}
	defer sampler.Terminate()

	devices, err := sampler.HostDevices()
	if err != nil {
		return err
	}
	sampler.FormatDevices(w, devices)
	return nil
}

// printBands writes the band index to frequency range table for the
// configured analysis settings.
func printBands(cfg *config.Config, w io.Writer) error {
	ex, err := analysis.NewExtractor(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d bands over %.0f-%.0f Hz (rate %d Hz, block %d):\n",
		cfg.Analysis.Bands, cfg.Analysis.FreqMin, cfg.Analysis.FreqMax,
		cfg.Audio.SampleRate, cfg.Audio.FFTSize)
	for b := 0; b < cfg.Analysis.Bands; b++ {
		f0, f1 := ex.BandRange(b, cfg.Analysis.Bands)
		fmt.Fprintf(w, "  band %2d: %7.1f - %7.1f Hz\n", b, f0, f1)
	}
	return nil
}
