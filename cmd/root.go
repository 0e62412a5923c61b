package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cuebird/cuebird/internal/app"
	"github.com/cuebird/cuebird/internal/compose"
	"github.com/cuebird/cuebird/internal/config"
	"github.com/cuebird/cuebird/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "cuebird <script.md>",
	Short:   "A terminal teleprompter for markdown scripts",
	Long:    `A terminal teleprompter that scrolls a markdown script at a controlled pace, with live reload, reading metrics, and session history.`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE:    runPrompter,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/cuebird/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write a debug log")
	rootCmd.Flags().String("theme", "",
		"color theme: dark, light, high-contrast (default: detect)")
	rootCmd.Flags().Bool("no-reload", false,
		"disable automatic reload when the script changes")

	_ = viper.BindPFlag("theme", rootCmd.Flags().Lookup("theme"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("theme", defaults.Theme)
	viper.SetDefault("reading.wpm", defaults.Reading.WPM)
	viper.SetDefault("reading.default_speed", defaults.Reading.DefaultSpeed)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.show_progress", defaults.UI.ShowProgress)
	viper.SetDefault("ui.focus_line", defaults.UI.FocusLine)
	viper.SetDefault("server.host", defaults.Server.Host)
	viper.SetDefault("server.port", defaults.Server.Port)
	viper.SetDefault("sessions.enabled", defaults.Sessions.Enabled)
	viper.SetDefault("sessions.db_path", defaults.Sessions.DBPath)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(filepath.Join(home, ".config", "cuebird"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create one with defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "cuebird", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// initDebugLog enables file logging when --debug or CUEBIRD_DEBUG is
// set. Returns a cleanup function, which may be a no-op.
func initDebugLog(prefix string) (func(), error) {
	if !debugFlag && os.Getenv("CUEBIRD_DEBUG") == "" {
		return func() {}, nil
	}

	logPath := os.Getenv("CUEBIRD_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}

	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "cuebird starting", "version", version, "logPath", logPath)
	return cleanup, nil
}

func runPrompter(cmd *cobra.Command, args []string) error {
	cleanup, err := initDebugLog("cuebird")
	if err != nil {
		return err
	}
	defer cleanup()

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if noReload, _ := cmd.Flags().GetBool("no-reload"); noReload {
		cfg.AutoReload = false
	}

	scriptPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving script path: %w", err)
	}

	model, err := app.New(compose.Desktop(cfg), cfg, scriptPath)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
