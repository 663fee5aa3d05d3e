package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/store"
)

var flagCacheOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the on-disk response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored responses per endpoint",
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete responses older than --older-than",
	RunE:  runCachePrune,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored response",
	RunE:  runCacheClear,
}

func init() {
	cachePruneCmd.Flags().DurationVar(&flagCacheOlderThan, "older-than", 7*24*time.Hour, "Age threshold")
	cacheCmd.AddCommand(cacheStatsCmd, cachePruneCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openDiskCache opens the cache database named by the config. It does not
// create one that was never enabled.
func openDiskCache(cmd *cobra.Command) (*store.Cache, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	path := cfg.CacheDBPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, path, nil
	}
	c, err := store.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf("opening cache: %w", err)
	}
	return c, path, nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	c, path, err := openDiskCache(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("  Cache file: %s\n", path)
	if c == nil {
		fmt.Println(cli.RenderInfo("No disk cache yet (enable with --disk-cache or [api] disk_cache)."))
		return nil
	}
	defer func() { _ = c.Close() }()

	stats, err := c.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("reading cache stats: %w", err)
	}
	if len(stats) == 0 {
		fmt.Println(cli.RenderInfo("The cache is empty."))
		return nil
	}

	now := time.Now()
	t := cli.Table{
		Title:   "Disk Cache",
		Headers: []string{"Endpoint", "Entries", "Size", "Oldest", "Newest"},
	}
	var entries int
	var size int64
	for _, s := range stats {
		t.Rows = append(t.Rows, []string{
			s.Endpoint,
			cli.FormatNumber(int64(s.Entries)),
			cli.FormatBytes(s.Bytes),
			cli.FormatAge(s.Oldest, now),
			cli.FormatAge(s.Newest, now),
		})
		entries += s.Entries
		size += s.Bytes
	}
	t.Rows = append(t.Rows, []string{"---"}, []string{"total", cli.FormatNumber(int64(entries)), cli.FormatBytes(size), "", ""})
	fmt.Println()
	fmt.Print(cli.RenderTable(t))
	return nil
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	c, _, err := openDiskCache(cmd)
	if err != nil || c == nil {
		return err
	}
	defer func() { _ = c.Close() }()

	n, err := c.Prune(context.Background(), time.Now().Add(-flagCacheOlderThan))
	if err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	fmt.Printf("  Removed %d responses older than %s\n", n, flagCacheOlderThan)
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	c, _, err := openDiskCache(cmd)
	if err != nil || c == nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.Clear(context.Background()); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	fmt.Println("  Cache cleared")
	return nil
}
