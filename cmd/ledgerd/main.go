package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reservewatch/ledger/internal/aggregate"
	"github.com/reservewatch/ledger/internal/config"
	"github.com/reservewatch/ledger/internal/forecast"
	"github.com/reservewatch/ledger/internal/groundtruth"
	"github.com/reservewatch/ledger/internal/ledger"
	"github.com/reservewatch/ledger/internal/report"
	"github.com/reservewatch/ledger/internal/seal"
	"github.com/reservewatch/ledger/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	tenantFlag := flag.String("tenant", "", "compose and print a trust report for this tenant")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	sealer, err := seal.New(cfg.SigningSecret, cfg.PreviousSigningSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize sealer")
	}

	store, err := ledger.NewPostgresStore(ledger.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, sealer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger store")
	}
	defer store.Close()

	riskStates, err := groundtruth.NewRiskStateStore(groundtruth.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize risk state store")
	}
	defer riskStates.Close()

	ctx := context.Background()

	if *tenantFlag != "" {
		composeReport(ctx, cfg, store, riskStates, *tenantFlag)
		return
	}

	// Tenants come from the local risk-state table by default; deployments
	// that enroll tenants as Stripe connected accounts list them from Stripe.
	var directory models.TenantDirectory = riskStates
	if cfg.StripeAPIKey != "" {
		directory = groundtruth.NewStripeDirectory(cfg.StripeAPIKey)
	}

	agg, err := aggregate.New(store, riskStates, directory).Aggregate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Aggregation failed")
	}

	out, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode aggregate")
	}
	fmt.Println(string(out))

	if !agg.MeetsSignificanceThreshold {
		log.Info().
			Int("tenants", agg.TenantsWithData).
			Int("evaluations", agg.TotalEvaluations).
			Msg("Below significance thresholds, accuracy withheld")
	}
}

func composeReport(ctx context.Context, cfg *config.Config, store *ledger.PostgresStore, riskStates *groundtruth.RiskStateStore, tenantID string) {
	engine := forecast.NewClient(cfg.ForecastAPIURL, cfg.ForecastAPIKey, time.Duration(cfg.RequestTimeout)*time.Second)

	current, err := engine.CurrentForecast(ctx, tenantID)
	if err != nil {
		log.Fatal().Err(err).Str("tenant", tenantID).Msg("Failed to fetch current forecast")
	}

	rep, err := report.NewComposer(store, riskStates).Compose(ctx, tenantID, current)
	if err != nil {
		log.Fatal().Err(err).Str("tenant", tenantID).Msg("Failed to compose report")
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode report")
	}
	fmt.Println(string(out))
}
