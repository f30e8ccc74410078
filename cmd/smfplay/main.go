// Package main is the entry point for the smfplay CLI
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/james-see/smfplay/pkg/api"
	"github.com/james-see/smfplay/pkg/midiout"
	"github.com/james-see/smfplay/pkg/player"
	"github.com/james-see/smfplay/pkg/smf"
	"github.com/james-see/smfplay/pkg/synth"
	"github.com/james-see/smfplay/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg          = player.DefaultConfig()
	strategyName string
	logLevel     string
	showEvents   bool
	timelineMax  int
	serverPort   int
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "smfplay",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "smfplay",
	Short: "Play and inspect Standard MIDI Files",
	Long: `smfplay plays Standard MIDI Files through a SoundFont synthesizer or a
MIDI output port, and inspects their tracks and timing.

Examples:
  smfplay play song.mid FluidR3_GM.sf2
  smfplay play song.mid --port "IAC Driver" --strategy independent
  smfplay inspect song.mid --events
  smfplay timeline song.mid
  smfplay tui FluidR3_GM.sf2
  smfplay serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var playCmd = &cobra.Command{
	Use:   "play <file.mid> [bank]",
	Short: "Play a MIDI file",
	Long: `Plays a MIDI file. The bank is a SoundFont (.sf2) for the built-in
synthesizer, or an optional SysEx dump (.syx) uploaded before playback when
--port selects a MIDI output.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPlay,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Show the header and tracks of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <file.mid>",
	Short: "Print the merged playback timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimeline,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

var tuiCmd = &cobra.Command{
	Use:   "tui [bank]",
	Short: "Launch interactive terminal player",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&cfg.MaxMetaCapture, "max-meta", cfg.MaxMetaCapture, "Meta event payload bytes kept per event")
	rootCmd.PersistentFlags().BoolVar(&cfg.SkipUnknownChunks, "skip-unknown", false, "Skip chunks that are not MTrk instead of failing")

	// Playback flags
	for _, c := range []*cobra.Command{playCmd, tuiCmd} {
		c.Flags().StringVarP(&strategyName, "strategy", "s", cfg.Strategy.String(), "Multi-track strategy (merged, independent)")
		c.Flags().StringVarP(&cfg.Port, "port", "p", "", "MIDI output port instead of the synthesizer")
		c.Flags().IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Synthesizer sample rate")
	}

	inspectCmd.Flags().BoolVarP(&showEvents, "events", "e", false, "List every decoded event")
	timelineCmd.Flags().IntVarP(&timelineMax, "limit", "n", 0, "Print at most this many events (0 = all)")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	if cmd.Flags().Lookup("strategy") != nil {
		if cfg.Strategy, err = player.ParseStrategy(strategyName); err != nil {
			return err
		}
	}
	return nil
}

// sink is a player.Sink owning an output device.
type sink interface {
	player.Sink
	Close() error
}

func openSink() (sink, error) {
	if cfg.Port != "" {
		return midiout.Open(cfg.Port, logger)
	}
	return synth.New(cfg.SampleRate, logger), nil
}

func loadFile(path string) (*smf.File, error) {
	if !smf.HasExtension(path) {
		logger.Warn("file does not have a MIDI extension", "path", path)
	}
	f, err := smf.ReadFile(path, cfg.ParseOptions(logger)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	f, err := loadFile(args[0])
	if err != nil {
		return err
	}
	var bank string
	if len(args) > 1 {
		bank = args[1]
	}

	out, err := openSink()
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	session := player.NewSession(out, cfg.SchedulerOptions(logger)...)
	if err := session.Open(bank); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	duration := player.Merge(f.Tracks).Duration(f.Division)
	fmt.Printf("Playing %s (%d tracks, %s, %s)\n", args[0], len(f.Tracks), duration.Round(time.Second), cfg.Strategy)

	err = session.Play(ctx, f)
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Println("Stopped.")
		return nil
	case err != nil:
		return err
	}
	fmt.Println("Playback complete!")
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := loadFile(args[0])
	if err != nil {
		return err
	}
	printInspect(cmd.OutOrStdout(), f, showEvents)
	return nil
}

func runTimeline(cmd *cobra.Command, args []string) error {
	f, err := loadFile(args[0])
	if err != nil {
		return err
	}
	printTimeline(cmd.OutOrStdout(), f, timelineMax)
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports := midiout.Ports()
	if len(ports) == 0 {
		fmt.Println("No MIDI output ports found.")
		return nil
	}
	for i, name := range ports {
		fmt.Printf("%2d  %s\n", i, name)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	var bank string
	if len(args) > 0 {
		bank = args[0]
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	tuiLogger := log.New(io.Discard)
	if logger.GetLevel() <= log.DebugLevel {
		lf, err := tea.LogToFile("smfplay-debug.log", "smfplay")
		if err != nil {
			return err
		}
		defer lf.Close()
		tuiLogger = log.NewWithOptions(lf, log.Options{ReportTimestamp: true, Level: log.DebugLevel})
	}

	out, err := openSink()
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	return tui.Run(out, bank, cfg, tuiLogger)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", serverPort)
	return api.NewServer(cfg, logger).Run(serverPort)
}
