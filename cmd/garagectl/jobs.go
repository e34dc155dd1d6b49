package main

import (
	"fmt"
	"text/tabwriter"

	"garage-orchestrator/internal/infra/jobqueue"
	"garage-orchestrator/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect the delayed job queue",
	}
	cmd.AddCommand(jobsListCmd())
	cmd.AddCommand(jobsDeadCmd())
	cmd.AddCommand(jobsRetryCmd())
	return cmd
}

func withQueue(run func(cmd *cobra.Command, args []string, q *jobqueue.Queue) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pool, closePool, err := e.postgres()
		if err != nil {
			return err
		}
		defer closePool()
		return run(cmd, args, jobqueue.New(pool, e.cfg.Worker, e.logger))
	}
}

func jobsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Queue depth per queue and state",
		RunE: withQueue(func(cmd *cobra.Command, _ []string, q *jobqueue.Queue) error {
			stats, err := q.Stats(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "QUEUE\tSTATE\tJOBS\tDUE")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.Queue, s.State, s.Count, s.Due)
			}
			return w.Flush()
		}),
	}
}

func jobsDeadCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "dead",
		Short: "Jobs that exhausted their attempts",
		RunE: withQueue(func(cmd *cobra.Command, _ []string, q *jobqueue.Queue) error {
			dead, err := q.ListDead(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tATTEMPTS\tLAST ERROR")
			for _, j := range dead {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", j.ID, j.Kind, j.Attempts, ptr.Deref(j.LastError))
			}
			return w.Flush()
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum jobs to list")
	return cmd
}

func jobsRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Move a dead job back to the pending queue",
		Args:  cobra.ExactArgs(1),
		RunE: withQueue(func(cmd *cobra.Command, args []string, q *jobqueue.Queue) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}
			if err := q.Retry(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s requeued\n", id)
			return nil
		}),
	}
}
