// Command digest runs one aggregation pass and broadcasts the network
// accuracy digest to the ops Telegram channel.
package main

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/reservewatch/ledger/internal/aggregate"
	"github.com/reservewatch/ledger/internal/config"
	"github.com/reservewatch/ledger/internal/groundtruth"
	"github.com/reservewatch/ledger/internal/ledger"
	"github.com/reservewatch/ledger/internal/seal"
	"github.com/reservewatch/ledger/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set")
	}

	sealer, err := seal.New(cfg.SigningSecret, cfg.PreviousSigningSecret)
	if err != nil {
		log.Fatalf("Failed to initialize sealer: %v", err)
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
		log.Fatalf("Failed to initialize ledger store: %v", err)
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
		log.Fatalf("Failed to initialize risk state store: %v", err)
	}
	defer riskStates.Close()

	agg, err := aggregate.New(store, riskStates, riskStates).Aggregate(context.Background())
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	msg := tgbotapi.NewMessage(cfg.TelegramChatID, formatDigest(agg))
	msg.ParseMode = "Markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Fatalf("Failed to send digest: %v", err)
	}

	log.Printf("Digest sent: %d tenants, %d evaluations", agg.TenantsWithData, agg.TotalEvaluations)
}

func formatDigest(agg *models.AggregateAccuracy) string {
	if !agg.MeetsSignificanceThreshold {
		return fmt.Sprintf(
			"📊 *Forecast Accuracy Digest*\n\n"+
				"Not enough evidence yet: %d tenants with data, %d evaluations.\n"+
				"Accuracy is withheld until %d tenants and %d evaluations.",
			agg.TenantsWithData, agg.TotalEvaluations,
			aggregate.MinTenants, aggregate.MinEvaluations,
		)
	}

	stability := "✅ single model version"
	if !agg.VersionStability {
		stability = fmt.Sprintf("⚠️ %d model versions active", len(agg.ActiveVersions))
	}

	return fmt.Sprintf(
		"📊 *Forecast Accuracy Digest*\n\n"+
			"Tenants: %d, evaluations: %d\n"+
			"Tier accuracy: %.1f%%\n"+
			"Trend accuracy: %.1f%%\n"+
			"Reserve variance (abs bps): mean %d, median %d, σ %d\n"+
			"%s",
		agg.TenantsWithData, agg.TotalEvaluations,
		*agg.TierAccuracy, *agg.TrendAccuracy,
		*agg.MeanVarianceBps, *agg.MedianVarianceBps, *agg.StdDevVarianceBps,
		stability,
	)
}
