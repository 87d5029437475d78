package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"timeweave/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the result cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show result cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.requireCache()
			if err != nil {
				return err
			}
			defer c.Close()

			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := c.Entries(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Directory: %s\n", stats.Dir)
			fmt.Fprintf(out, "Entries:   %d\n", stats.Entries)
			fmt.Fprintf(out, "Size:      %s\n", humanBytes(stats.Bytes))
			fmt.Fprintf(out, "Hits:      %d\n", stats.Hits)
			printCacheEntries(out, entries, limit)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to list (0 lists all)")
	return cmd
}

func printCacheEntries(out io.Writer, entries []cache.Entry, limit int) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "Cached indexes: none")
		return
	}
	const stampLayout = "2006-01-02 15:04"
	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	rows := make([][]string, 0, len(shown))
	for _, e := range shown {
		rows = append(rows, []string{
			e.Key.Short(),
			humanBytes(e.SizeBytes),
			strconv.FormatInt(e.Hits, 10),
			e.CreatedAt.Local().Format(stampLayout),
			e.LastUsedAt.Local().Format(stampLayout),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Key", "Size", "Hits", "Created", "Last used"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))
	if hidden := len(entries) - len(shown); hidden > 0 {
		fmt.Fprintf(out, "... %d more\n", hidden)
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var maxEntries int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove least recently used entries beyond a limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			limit := cfg.Cache.MaxEntries
			if cmd.Flags().Changed("max-entries") {
				limit = maxEntries
			}
			if limit < 0 {
				return fmt.Errorf("--max-entries must be >= 0, got %d", limit)
			}
			c, err := ctx.requireCache()
			if err != nil {
				return err
			}
			defer c.Close()

			removed, err := c.Prune(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries (keeping at most %d)\n", removed, limit)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxEntries, "max-entries", 0, "Entries to keep (defaults to cache.max_entries)")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached index",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.requireCache()
			if err != nil {
				return err
			}
			defer c.Close()

			removed, err := c.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", removed)
			return nil
		},
	}
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div := int64(unit)
	exp := 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	value := float64(v) / float64(div)
	return fmt.Sprintf("%.1f %ciB", value, "KMGTPEZY"[exp])
}
