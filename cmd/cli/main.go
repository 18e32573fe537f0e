package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"keystats/adapters/excel"
	"keystats/domain/core"
	"keystats/internal"
	"keystats/internal/config"
	"keystats/internal/container"
	"keystats/internal/errors"
	"keystats/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "keystats-cli",
		Short:        "Operator commands for the key statistics backend",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newCreateUserCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newStatsCmd(),
		newExportCmd(),
		newCacheCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// open loads configuration and builds a container for one command
func open(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	c, err := container.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.InitWithDatabase(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container) error) error {
	ctx := cmd.Context()
	c, err := open(ctx)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())
	return fn(ctx, c)
}

func newCreateUserCmd() *cobra.Command {
	var email, fullName string

	cmd := &cobra.Command{
		Use:   "create-user [username] [password]",
		Short: "Register a dashboard user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
				user, err := c.UserService.Register(ctx, args[0], email, fullName, args[1])
				if errors.HasCode(err, errors.CodeConflict) {
					return fmt.Errorf("user %s not created: %w", args[0], err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
				if err := c.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var count, days int
	var seed int64
	var highScoreRate float64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic key records ending now",
		Long: `Insert synthetic key records spread evenly over the last --days days.

Example: keystats-cli seed --count 2000 --days 14 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 || days <= 0 {
				return fmt.Errorf("--count and --days must be positive")
			}
			return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
				end := core.Naive(time.Now(), c.Resolver.Location())
				genCfg := testkit.DefaultKeyConfig()
				genCfg.Count = count
				genCfg.StartDate = end.Add(-time.Duration(days) * 24 * time.Hour)
				genCfg.EndDate = end
				genCfg.Seed = seed
				genCfg.HighScoreRate = highScoreRate

				records := testkit.NewKeyGenerator(genCfg).Generate()
				for i := range records {
					if err := c.Records.Insert(ctx, &records[i]); err != nil {
						return fmt.Errorf("insert record %d: %w", i, err)
					}
				}
				// cached windows may now be stale
				c.Cache.ClearPrefix(ctx, "")
				fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d records between %s and %s\n",
					len(records), genCfg.StartDate.Format(time.DateTime), end.Format(time.DateTime))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 500, "Number of records")
	cmd.Flags().IntVar(&days, "days", 7, "Days of history to cover")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().Float64Var(&highScoreRate, "high-score-rate", 0.05, "Share of records above the qualified threshold")
	return cmd
}

// rangeFlags binds --start/--end (epoch milliseconds); unset means unbounded
type rangeFlags struct {
	start, end string
}

func (r *rangeFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.start, "start", "", "Window start, epoch milliseconds")
	cmd.Flags().StringVar(&r.end, "end", "", "Window end, epoch milliseconds")
}

func (r *rangeFlags) parse() (*int64, *int64, error) {
	parse := func(name, raw string) (*int64, error) {
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--%s must be an integer millisecond timestamp", name)
		}
		return &v, nil
	}
	start, err := parse("start", r.start)
	if err != nil {
		return nil, nil, err
	}
	end, err := parse("end", r.end)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func newStatsCmd() *cobra.Command {
	var rng rangeFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the statistics snapshot as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := rng.parse()
			if err != nil {
				return err
			}
			return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
				result, err := c.Analyzer.GetStatistics(ctx, start, end)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			})
		},
	}

	rng.bind(cmd)
	return cmd
}

func newExportCmd() *cobra.Command {
	var rng rangeFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write recent keys, high-score keys and statistics to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := rng.parse()
			if err != nil {
				return err
			}
			return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
				var snap excel.Snapshot
				if snap.Recent, err = c.Analyzer.GetRecentKeys(ctx, start, end); err != nil {
					return err
				}
				if snap.HighScore, err = c.Analyzer.GetHighScoreKeys(ctx, start, end); err != nil {
					return err
				}
				if snap.Statistics, err = c.Analyzer.GetStatistics(ctx, start, end); err != nil {
					return err
				}
				if err := excel.NewExporter().SaveAs(out, snap); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			})
		},
	}

	rng.bind(cmd)
	cmd.Flags().StringVar(&out, "out", "keystats.xlsx", "Output workbook path")
	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Cache maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [prefix]",
		Short: "Delete cached entries under the configured namespace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return withContainer(cmd, func(ctx context.Context, c *container.Container) error {
				if !c.Cache.Enabled() {
					return fmt.Errorf("cache is disabled or unreachable")
				}
				if !c.Cache.ClearPrefix(ctx, prefix) {
					return fmt.Errorf("cache clear failed")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s%s*\n", c.Cache.Prefix(), prefix)
				return nil
			})
		},
	})
	return cmd
}
