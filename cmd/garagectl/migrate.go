package main

import (
	"fmt"
	"os"

	"garage-orchestrator/internal/pkg/errs"

	"ariga.io/atlas-go-sdk/atlasexec"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var (
		dir    string
		binary string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Applies the versioned migrations directory to the configured database
with the atlas CLI.

Examples:
  garagectl migrate
  garagectl migrate --dir ./migrations --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			workdir, err := atlasexec.NewWorkingDir(atlasexec.WithMigrations(os.DirFS(dir)))
			if err != nil {
				return errs.Wrap(err, "load migrations")
			}
			defer workdir.Close()

			client, err := atlasexec.NewClient(workdir.Path(), binary)
			if err != nil {
				return errs.Wrap(err, "init atlas client")
			}

			res, err := client.MigrateApply(cmd.Context(), &atlasexec.MigrateApplyParams{
				URL:    e.cfg.DB.BuildDSN(),
				DryRun: dryRun,
			})
			if err != nil {
				return errs.Wrap(err, "apply migrations")
			}

			out := cmd.OutOrStdout()
			if len(res.Applied) == 0 {
				fmt.Fprintf(out, "schema is up to date (version %s)\n", res.Current)
				return nil
			}
			for _, f := range res.Applied {
				fmt.Fprintf(out, "applied %s\n", f.Name)
			}
			fmt.Fprintf(out, "migrated %s -> %s\n", valueOr(res.Current, "empty"), res.Target)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "migrations directory")
	cmd.Flags().StringVar(&binary, "atlas", "atlas", "atlas binary")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print pending statements without executing them")
	return cmd
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
