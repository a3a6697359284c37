// cmd/analyze/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/plantops/supply-coverage/internal/cache"
	"github.com/plantops/supply-coverage/internal/config"
	"github.com/plantops/supply-coverage/internal/fleet"
	"github.com/plantops/supply-coverage/internal/forecast"
	"github.com/plantops/supply-coverage/internal/repository"
	"github.com/plantops/supply-coverage/internal/repository/postgres"
	"github.com/plantops/supply-coverage/internal/service"
	"github.com/plantops/supply-coverage/internal/storage"
	"github.com/plantops/supply-coverage/pkg/logger"
)

const dateLayout = "2006-01-02"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Run the supply coverage reconciliation over SAP extracts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "stock",
				Usage:    "Path to the stock snapshot extract (xlsx or csv)",
				Required: true,
				EnvVars:  []string{"STOCK_PATH"},
			},
			&cli.StringFlag{
				Name:     "ledger",
				Usage:    "Path to the movement ledger extract (xlsx or csv)",
				Required: true,
				EnvVars:  []string{"LEDGER_PATH"},
			},
			&cli.StringFlag{
				Name:     "reference",
				Usage:    "Path to the reference workbook (xlsx)",
				Required: true,
				EnvVars:  []string{"REFERENCE_PATH"},
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Start of the fleet window (YYYY-MM-DD), default 15 days before --to",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "End of the fleet window (YYYY-MM-DD), default today",
			},
			&cli.Float64Flag{
				Name:  "tolerance",
				Usage: "Tolerance percentage echoed into the report parameters",
			},
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string; when set the run is persisted",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Publish the flat export to the document store",
			},
		},
		Action: runAnalyze,
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("analysis failed")
	}
}

func runAnalyze(c *cli.Context) error {
	cfg := config.Load()

	to := time.Now()
	if v := c.String("to"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid --to date %q: %w", v, err)
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -15)
	if v := c.String("from"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid --from date %q: %w", v, err)
		}
		from = parsed
	}

	var repo repository.CoverageRepository
	if dbURL := c.String("db-url"); dbURL != "" {
		db, err := postgres.NewDBFromURL("pgx", dbURL)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = postgres.NewCoverageRepository(db)
		if err := repo.EnsureSchema(c.Context); err != nil {
			return err
		}
	}

	var store storage.ObjectStorage
	if c.Bool("upload") {
		var err error
		store, err = storage.NewDocStoreClient(cfg.Storage)
		if err != nil {
			return err
		}
	}

	var fleetClient service.FleetAPI
	if cfg.Fleet.BaseURL != "" {
		fleetClient = fleet.NewClient(cfg.Fleet)
	}
	var forecaster service.Forecaster
	if cfg.Forecast.BaseURL != "" {
		forecaster = forecast.NewClient(cfg.Forecast)
	}

	svc := service.NewAnalysisService(cfg, fleetClient, forecaster, store, repo, cache.NewNoopCoverageCache())

	summary, err := svc.RunAnalysis(c.Context, service.AnalysisRequest{
		StockPath:     c.String("stock"),
		LedgerPath:    c.String("ledger"),
		ReferencePath: c.String("reference"),
		From:          from,
		To:            to,
		TolerancePct:  c.Float64("tolerance"),
		Persist:       repo != nil,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
