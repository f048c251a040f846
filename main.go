// Package main provides the entry point for the voxsync CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	stdsync "sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/voxsync/voxsync/tts"
	"github.com/voxsync/voxsync/tts/audio"
	"github.com/voxsync/voxsync/tts/engines"
	"github.com/voxsync/voxsync/tts/segment"
	vsync "github.com/voxsync/voxsync/tts/sync"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile     string
	engineName     string
	gain           float64
	updateRate     time.Duration
	highlightColor string
	execCommand    string

	rootCmd = &cobra.Command{
		Use:   "voxsync [FILE]",
		Short: "Speak text aloud, highlighting each word as it plays",
		Long: paragraph(
			fmt.Sprintf("\nSpeak text aloud and follow along %s.", keyword("word by word")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		RunE:          execute,
	}
)

// textFromArgs resolves the text to speak: an explicit file, "-" or a
// pipe for stdin.
func textFromArgs(args []string) (string, error) {
	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return string(b), nil
	}

	if len(args) == 0 {
		return "", fmt.Errorf("missing text source: pass a file or pipe text on stdin")
	}
	if args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("unable to open file: %w", err)
	}
	return string(b), nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func loadConfig() (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}

	// Environment variables are the final override.
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func execute(_ *cobra.Command, args []string) error {
	text, err := textFromArgs(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := engines.New(cfg)
	if err != nil {
		return err
	}

	syn := vsync.New(cfg, engine, audio.NewPlayer())
	return speak(syn, cfg, text)
}

// speak runs one request to completion, redrawing the active word on the
// terminal as the cursor moves.
func speak(syn *vsync.Synchronizer, cfg tts.Config, text string) error {
	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	highlight := lipgloss.NewStyle().
		Foreground(lipgloss.Color(cfg.HighlightColor)).
		Bold(true)

	finished := make(chan struct{})
	var once stdsync.Once
	syn.OnStateChange(func(st tts.StateType) {
		if st == tts.StateIdle {
			once.Do(func() { close(finished) })
		}
	})
	if interactive {
		syn.OnWordChange(func(idx int) {
			snap := syn.Snapshot()
			fmt.Printf("\r\x1b[K%s", renderWords(snap.Text, snap.Boundaries, idx, highlight))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := syn.Speak(ctx, tts.Request{Text: text, Gain: cfg.Gain}); err != nil {
		return err
	}

	select {
	case <-finished:
	case <-ctx.Done():
		_ = syn.Stop()
	}
	if interactive {
		fmt.Println()
	}
	return nil
}

// renderWords lays the words out on one line with the active word styled.
func renderWords(text string, boundaries []tts.WordBoundary, active int, highlight lipgloss.Style) string {
	words := make([]string, len(boundaries))
	for i, b := range boundaries {
		w := segment.Text(text, b)
		if b.Index == active {
			w = highlight.Render(w)
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)
	if path := os.Getenv("VOXSYNC_LOGFILE"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("error setting up logging: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}
	return func() error { return nil }, nil
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "mock", "speech engine (mock or exec)")
	rootCmd.Flags().Float64VarP(&gain, "gain", "g", 1.0, "linear gain applied to the audio")
	rootCmd.Flags().DurationVar(&updateRate, "update-rate", 50*time.Millisecond, "how often to poll the playback position")
	rootCmd.Flags().StringVar(&highlightColor, "highlight-color", "212", "color of the active word")
	rootCmd.Flags().StringVar(&execCommand, "exec-command", "", "speech command for the exec engine")

	// Config bindings
	_ = viper.BindPFlag("speech.engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("speech.gain", rootCmd.Flags().Lookup("gain"))
	_ = viper.BindPFlag("speech.update_rate", rootCmd.Flags().Lookup("update-rate"))
	_ = viper.BindPFlag("speech.highlight_color", rootCmd.Flags().Lookup("highlight-color"))
	_ = viper.BindPFlag("speech.exec.command", rootCmd.Flags().Lookup("exec-command"))

	rootCmd.AddCommand(configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voxsync")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voxsync")}, dirs...)
	}

	if c := os.Getenv("VOXSYNC_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voxsync")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voxsync")
	viper.AutomaticEnv()
	tts.SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "voxsync.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}

// Terminal styling helpers for command help text.
var (
	keyword = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "212", Dark: "212"}).
		Render
)

func paragraph(s string) string {
	return lipgloss.NewStyle().
		Width(78).
		Padding(0, 0, 1, 2).
		Render(s)
}
