package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"bookshelf/internal/platform/database"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: c.withMigrator(func(ctx context.Context, p *goose.Provider, out io.Writer) error {
				results, err := p.Up(ctx)
				if err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				for _, r := range results {
					fmt.Fprintf(out, "applied %s (%s)\n", filepath.Base(r.Source.Path), r.Duration)
				}
				fmt.Fprintln(out, "Migrations applied successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: c.withMigrator(func(ctx context.Context, p *goose.Provider, out io.Writer) error {
				r, err := p.Down(ctx)
				if err != nil {
					return fmt.Errorf("failed to rollback migrations: %w", err)
				}
				fmt.Fprintf(out, "rolled back %s\n", filepath.Base(r.Source.Path))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: c.withMigrator(func(ctx context.Context, p *goose.Provider, out io.Writer) error {
				statuses, err := p.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to check migration status: %w", err)
				}
				for _, s := range statuses {
					fmt.Fprintf(out, "%-8s %s\n", s.State, filepath.Base(s.Source.Path))
				}
				return nil
			}),
		},
		c.migrateCreateCmd(),
	)
	return cmd
}

func (c *cli) migrateCreateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty SQL migration for the configured driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				driver, _, err := database.ParseDSN(c.dsn())
				if err != nil {
					return err
				}
				dir = migrationsDir(driver)
			}
			goose.SetSequential(true)
			if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration created: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default $MIGRATIONS_DIR or db/migrations/<driver>)")
	return cmd
}

func (c *cli) withMigrator(fn func(context.Context, *goose.Provider, io.Writer) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cn, err := openConn(ctx, c.dsn())
		if err != nil {
			return err
		}
		defer cn.close()

		p, err := database.NewMigrator(cn.db, cn.driver)
		if err != nil {
			return err
		}
		return fn(ctx, p, cmd.OutOrStdout())
	}
}
