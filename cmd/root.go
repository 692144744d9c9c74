package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lukman83/dishscout/config"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dishscout",
	Short: "DishScout - food delivery price comparison CLI, REST API & MCP server",
	Long: "Searches Snoonu, Rafeeq and Talabat at once, groups the same dish from the same\n" +
		"restaurant across platforms and ranks the offers by coverage, price or delivery time.",
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (yaml, toml or json)")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("delay-profile", "", "Delay profile: off, aggressive, normal, cautious")
	f.Bool("respect-robots", false, "Respect robots.txt rules")
	f.String("proxy-mode", "", "Proxy mode: direct, decodo, custom")
	f.String("proxy-file", "", "Path to proxy list file (custom mode)")
	f.Bool("headless", false, "Fall back to a headless browser when a platform API call fails")
}

func initConfig(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()

	cfg = config.DefaultConfig()
	if path, _ := f.GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.LoadFromEnv()

	// Flags override file and environment, but only when given.
	if v, _ := f.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := f.GetString("delay-profile"); v != "" {
		cfg.Stealth.DelayProfile = v
	}
	if f.Changed("respect-robots") {
		cfg.Stealth.RespectRobots, _ = f.GetBool("respect-robots")
	}
	if v, _ := f.GetString("proxy-mode"); v != "" {
		cfg.Stealth.ProxyMode = v
	}
	if v, _ := f.GetString("proxy-file"); v != "" {
		cfg.Stealth.ProxyFile = v
	}
	if f.Changed("headless") {
		cfg.Platforms.HeadlessFallback, _ = f.GetBool("headless")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(logger)
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
