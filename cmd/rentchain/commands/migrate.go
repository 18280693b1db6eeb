package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/totegamma/rentchain/internal/infra/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(conf)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Println("migrated", conf.Server.Database)
			return nil
		},
	}
}
