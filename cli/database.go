package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kbukum/insane/app"
	"github.com/kbukum/insane/database"
	apperrors "github.com/kbukum/insane/errors"
)

func (c *CLI) databaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Perform database operations",
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations, or roll back with --down",
		Args:  cobra.NoArgs,
		RunE: c.withDB(func(cmd *cobra.Command, rt *Runtime, db *database.DB) error {
			m, err := c.requireMigrator(rt, db)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("down") {
				n, _ := cmd.Flags().GetInt("down")
				return m.Down(cmd.Context(), n)
			}
			return m.Up(cmd.Context())
		}),
	}
	migrate.Flags().IntP("down", "d", 0, "roll back n migrations (0 or less rolls back all)")

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Load initial data",
		Args:  cobra.NoArgs,
		RunE: c.withDB(func(cmd *cobra.Command, rt *Runtime, db *database.DB) error {
			h, err := c.databaseHooks()
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("path")
			return h.Seed(cmd.Context(), db, path)
		}),
	}
	seed.Flags().String("path", "seeds", "seed data location")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create",
			Short: "Create the configured database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := c.runtime(cmd)
				if err != nil {
					return err
				}
				if !rt.Config.Database.Configured() {
					return errDatabaseNotConfigured()
				}
				return database.Create(cmd.Context(), rt.Config.Database.URI, rt.Log)
			},
		},
		migrate,
		&cobra.Command{
			Use:   "reset",
			Short: "Roll back every migration, then apply them again",
			Args:  cobra.NoArgs,
			RunE: c.withDB(func(cmd *cobra.Command, rt *Runtime, db *database.DB) error {
				m, err := c.requireMigrator(rt, db)
				if err != nil {
					return err
				}
				return m.Reset(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the migration status",
			Args:  cobra.NoArgs,
			RunE: c.withDB(func(cmd *cobra.Command, rt *Runtime, db *database.DB) error {
				m, err := c.requireMigrator(rt, db)
				if err != nil {
					return err
				}
				st, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(rt, st)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "truncate",
			Short: "Delete the data in every table, keeping the schema",
			Args:  cobra.NoArgs,
			RunE: c.withDB(func(cmd *cobra.Command, _ *Runtime, db *database.DB) error {
				h, err := c.databaseHooks()
				if err != nil {
					return err
				}
				return h.Truncate(cmd.Context(), db)
			}),
		},
		seed,
	)
	return cmd
}

func errDatabaseNotConfigured() error {
	return apperrors.Configuration("database.uri is not set")
}

// withDB resolves the runtime and opens the database for the duration of fn.
func (c *CLI) withDB(fn func(cmd *cobra.Command, rt *Runtime, db *database.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		rt, err := c.runtime(cmd)
		if err != nil {
			return err
		}
		if !rt.Config.Database.Configured() {
			return errDatabaseNotConfigured()
		}
		db, err := database.Open(cmd.Context(), rt.Config.Database, rt.Log)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cmd, rt, db)
	}
}

// migrator reads embedded migrations when the application provides them,
// otherwise database.migrations_dir.
func (c *CLI) migrator(rt *Runtime, db *database.DB) *database.Migrator {
	if mh, ok := c.hooks.(app.MigrationHooks); ok {
		if fsys := mh.Migrations(); fsys != nil {
			return database.NewMigrator(db, fsys, ".", rt.Log)
		}
	}
	dir := rt.Config.Database.MigrationsDir
	if info, err := os.Stat(dir); dir == "" || err != nil || !info.IsDir() {
		return nil
	}
	return database.NewMigrator(db, nil, dir, rt.Log)
}

func (c *CLI) requireMigrator(rt *Runtime, db *database.DB) (*database.Migrator, error) {
	m := c.migrator(rt, db)
	if m == nil {
		return nil, apperrors.Configuration(fmt.Sprintf("no migrations found in %q", rt.Config.Database.MigrationsDir))
	}
	return m, nil
}

func (c *CLI) databaseHooks() (app.DatabaseHooks, error) {
	h, ok := c.hooks.(app.DatabaseHooks)
	if !ok {
		return nil, apperrors.Configuration(c.hooks.AppName() + " does not implement database hooks")
	}
	return h, nil
}

func (c *CLI) truncate() database.TruncateFunc {
	h, ok := c.hooks.(app.DatabaseHooks)
	if !ok {
		return nil
	}
	return h.Truncate
}

func printStatus(rt *Runtime, st database.MigrationStatus) {
	available := make([]string, len(st.Available))
	for i, v := range st.Available {
		available[i] = fmt.Sprint(v)
	}
	fmt.Fprintf(rt.Out, "version:   %d\n", st.Version)
	fmt.Fprintf(rt.Out, "dirty:     %t\n", st.Dirty)
	fmt.Fprintf(rt.Out, "pending:   %d\n", st.Pending)
	fmt.Fprintf(rt.Out, "available: %s\n", strings.Join(available, ", "))
}
