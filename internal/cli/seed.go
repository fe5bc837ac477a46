package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"health-risk-service/internal/catalog"
	"health-risk-service/internal/config"
	pgstore "health-risk-service/internal/infra/postgres"
)

// NewSeedCmd writes the builtin question catalog into Postgres so servers can
// load it from there instead of the compiled-in copy.
func NewSeedCmd(configPath *string) *cobra.Command {
	var catalogID string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the builtin question catalog into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}

			sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
			db := bun.NewDB(sqldb, pgdialect.New())
			defer db.Close()

			data, err := json.Marshal(catalog.Builtin().Document())
			if err != nil {
				return err
			}
			if _, err := db.ExecContext(cmd.Context(),
				`INSERT INTO catalogs (id, data) VALUES (?, ?::jsonb)
				 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
				catalogID, string(data)); err != nil {
				return err
			}
			log.Printf("catalog %q seeded", catalogID)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogID, "catalog-id", pgstore.DefaultCatalogID, "catalog row to write")
	return cmd
}
