// Package cli implements pmisctl, the command line client for the
// allocation service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ad0t/PMIS-Allocation/internal/adapters/mq/notify"
	"github.com/Ad0t/PMIS-Allocation/internal/domain/model"
	"github.com/Ad0t/PMIS-Allocation/pkg/logger"
)

const (
	app = "pmisctl"

	defaultBaseURL = "http://localhost:9080"
	defaultTimeout = 30 * time.Second
	defaultWorkers = 4
	defaultRounds  = 5
)

// NewRootCommand builds the command tree. Output goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	cfg := &Config{}

	root := &cobra.Command{
		Use:           app,
		Short:         app + " drives the PMIS allocation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logger.FormatConsole), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			level := "warn"
			if cfg.Verbose {
				level = "debug"
			}
			return logger.SetLevelString(level)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.BaseURL, "url", defaultBaseURL, "base URL of the allocation service")
	flags.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flags.BoolVar(&cfg.JSON, "json", false, "print JSON instead of tables")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "verbose/debug output")

	root.AddCommand(
		newAllocateCommand(cfg),
		newShowCommand(cfg),
		newRefreshCommand(cfg),
		newInternshipsCommand(cfg),
		newBenchCommand(cfg),
		newWatchCommand(),
	)
	return root
}

func newAllocateCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate <internship-id>",
		Short: "Run an allocation and print the ranked list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := client(cfg).Allocate(cmd.Context(), args[0], cfg.Wait)
			if err != nil {
				return err
			}
			return printAllocation(cmd.OutOrStdout(), cfg, a)
		},
	}
	cmd.Flags().DurationVar(&cfg.Wait, "wait", 0, "how long the server waits for the run (0 waits until done)")
	return cmd
}

func newShowCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <internship-id>",
		Short: "Print the last published result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := client(cfg).Result(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printAllocation(cmd.OutOrStdout(), cfg, a)
		},
	}
}

func newRefreshCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Schedule a run for every active internship",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := client(cfg).Refresh(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if cfg.JSON {
				return writeJSON(w, report)
			}
			_, err = fmt.Fprintf(w, "enqueued: %s\npending:  %s\ndropped:  %s\n",
				joinIDs(report.Enqueued), joinIDs(report.Pending), joinIDs(report.Dropped))
			return err
		},
	}
}

func newInternshipsCommand(cfg *Config) *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "internships",
		Short: "List internships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := client(cfg).Internships(cmd.Context(), active)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if cfg.JSON {
				return writeJSON(w, list)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tCAPACITY\tSTATUS")
			for _, in := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					in.ID, in.Title, in.Company, in.Location, in.Capacity, in.State)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&active, "active", false, "only list open internships")
	return cmd
}

func newBenchCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench [internship-id...]",
		Short: "Hammer allocate concurrently and verify the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := Bench(cmd.Context(), client(cfg), cfg, args)
			if stats != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(),
					"requests=%d succeeded=%d stale=%d busy=%d failed=%d runs=%d duration=%s\n",
					stats.Requests, stats.Succeeded, stats.Stale, stats.Busy, stats.Failed, stats.Runs, stats.Duration)
			}
			return err
		},
	}
	cmd.Flags().IntVar(&cfg.Workers, "workers", defaultWorkers, "number of concurrent workers")
	cmd.Flags().IntVar(&cfg.Rounds, "rounds", defaultRounds, "allocate calls per internship")
	cmd.Flags().DurationVar(&cfg.Wait, "wait", 0, "how long the server waits for each run")
	return cmd
}

func newWatchCommand() *cobra.Command {
	var natsURL, subject string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print result-published events from NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := notify.Connect(natsURL, app)
			if err != nil {
				return err
			}
			defer conn.Close()
			return Watch(cmd.Context(), conn, subject, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats", "nats://127.0.0.1:4222", "NATS server URL")
	cmd.Flags().StringVar(&subject, "subject", notify.DefaultSubject, "subject results are announced on")
	return cmd
}

func client(cfg *Config) *Client {
	return NewClient(cfg.BaseURL, cfg.Timeout)
}

func printAllocation(w io.Writer, cfg *Config, a Allocation) error {
	if cfg.JSON {
		return writeJSON(w, a)
	}
	header := fmt.Sprintf("internship %s  version %d  run %s  strategy %s  state %s",
		a.InternshipID, a.Version, a.RunID, a.Strategy, a.State)
	if a.Stale {
		header += "  (stale: " + a.Cause + ")"
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	return printEntries(w, a.Entries)
}

func printEntries(w io.Writer, entries []model.ScoredCandidate) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tCANDIDATE\tNAME\tSCORE\tSTATUS")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%s\n", e.Rank, e.CandidateID, e.Name, e.Score, e.Status)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func joinIDs(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ",")
}

// Execute runs the command tree against ctx.
func Execute(ctx context.Context, out io.Writer, args []string) error {
	root := NewRootCommand(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
