package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bookshelf/internal/platform/logging"
)

type cli struct {
	v      *viper.Viper
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:          "shelfctl",
		Short:        "Administer a bookshelf database",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			loadEnvFiles()
			c.logger = logging.NewWithOutput(c.v.GetString("log_level"), cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().String("dsn", "", "database DSN (default $DB_DSN, then sqlite://bookshelf.db)")
	_ = c.v.BindPFlag("dsn", root.PersistentFlags().Lookup("dsn"))
	_ = c.v.BindEnv("dsn", "DB_DSN")
	c.v.SetDefault("dsn", "sqlite://bookshelf.db")
	_ = c.v.BindEnv("log_level", "LOG_LEVEL")
	c.v.SetDefault("log_level", "info")

	root.AddCommand(c.migrateCmd(), c.userCmd(), c.seedCmd())
	return root
}

func (c *cli) dsn() string {
	return c.v.GetString("dsn")
}
