package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println(cli.RenderWarning("Invalid: " + err.Error()))
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DefaultYear != 0 {
		fmt.Printf("    Default season: %d\n", cfg.General.DefaultYear)
	} else {
		fmt.Println("    Default season: current year")
	}
	fmt.Printf("    Workers:        %d\n", cfg.General.Workers)
	fmt.Println()

	fmt.Println("  [API]")
	base := cfg.API.BaseURL
	if base == "" {
		base = openf1.DefaultBaseURL + " (default)"
	}
	fmt.Printf("    Base URL:   %s\n", base)
	fmt.Printf("    Cache TTL:  %s\n", cfg.CacheTTL())
	if cfg.API.DiskCache {
		fmt.Printf("    Disk cache: %s\n", cfg.CacheDBPath())
	} else {
		fmt.Println("    Disk cache: off")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", cfg.PollInterval())
	fmt.Println()

	fmt.Println("  Run `f1dash setup` to reconfigure.")
	return nil
}
