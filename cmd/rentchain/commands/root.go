package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/totegamma/rentchain/internal/config"
	"github.com/totegamma/rentchain/internal/infra/database"
)

var (
	configPath string
	serverURL  string
)

func Execute() error {
	root := &cobra.Command{
		Use:          "rentchain",
		Short:        "Rental property escrow engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load() // optional .env in the working directory
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml)")
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "server base URL for client commands")

	root.AddCommand(serveCmd(), migrateCmd(), keygenCmd(), tokenCmd(), getCmd())
	return root.Execute()
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func openDatabase(conf config.Config) (*gorm.DB, error) {
	switch conf.Server.Database {
	case "postgres":
		return database.NewPostgres(conf.Server.PostgresDsn)
	default:
		return database.NewSqlite(conf.Server.SqlitePath)
	}
}
