package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("  Welcome to f1dash!")
	fmt.Println()

	cfg, err = tui.RunSetup(cfg, time.Now().Year())
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("  Setup cancelled, nothing saved.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `f1dash setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
