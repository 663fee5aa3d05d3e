package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve standings and session views as MCP tools over stdio",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs stay on stderr.
	b := newBackend(cfg, backendOptions{})
	defer b.Close()

	server := mcptools.NewServer(mcptools.Options{
		Dashboard:   b.dash,
		Records:     b.api,
		DefaultYear: cfg.Year(time.Now()),
		Version:     version,
	})

	ctx, cancel := commandContext()
	defer cancel()

	b.logger.Info("mcp server on stdio", "version", version)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
