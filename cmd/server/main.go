package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	appAccount "github.com/orkesta-pay/settlement-go/internal/application/account"
	appCheckout "github.com/orkesta-pay/settlement-go/internal/application/checkout"
	"github.com/orkesta-pay/settlement-go/internal/application/fees"
	appPayout "github.com/orkesta-pay/settlement-go/internal/application/payout"
	appTransfer "github.com/orkesta-pay/settlement-go/internal/application/transfer"
	appWebhook "github.com/orkesta-pay/settlement-go/internal/application/webhook"
	"github.com/orkesta-pay/settlement-go/internal/config"
	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
	"github.com/orkesta-pay/settlement-go/internal/infra/metrics"
	httpapi "github.com/orkesta-pay/settlement-go/internal/infrastructure/http"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/persistence/sqlite"
	"github.com/orkesta-pay/settlement-go/internal/infrastructure/processor"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := sqlite.RunMigrations(db); err != nil {
		log.Fatal(err)
	}

	accountRepo := sqlite.NewAccountRepository(db)
	checkoutRepo := sqlite.NewCheckoutRepository(db)
	webhookRepo := sqlite.NewWebhookRepository(db)
	transferRepo := sqlite.NewTransferRepository(db)
	payoutRepo := sqlite.NewPayoutRepository(db)
	summaryRepo := sqlite.NewSummaryRepository(db)
	ledgerRepo := sqlite.NewLedgerRepository(db)

	logger := &logging.StdoutLogger{}
	counters := &metrics.Counters{}
	calculator := fees.NewCalculator()

	var client processor.Client
	if cfg.ProcessorBaseURL != "" {
		client = &processor.HTTPClient{
			BaseURL:   cfg.ProcessorBaseURL,
			SecretKey: cfg.ProcessorKey,
		}
	} else {
		client = processor.NewFakeClient()
	}

	accountService := &appAccount.Service{
		Accounts: accountRepo,
		Logger:   logger,
	}

	checkoutService := &appCheckout.Service{
		Accounts:  accountRepo,
		Intents:   checkoutRepo,
		Fees:      calculator,
		Processor: client,
		Logger:    logger,
		Metrics:   counters,
		IntentTTL: cfg.IntentTTL,
	}

	transferService := &appTransfer.Service{
		Transfers: transferRepo,
		Processor: client,
		Logger:    logger,
		Metrics:   counters,
	}

	reconciler := &appPayout.Reconciler{
		Payouts:   payoutRepo,
		Summaries: summaryRepo,
		Ledger:    ledgerRepo,
		Processor: client,
		Logger:    logger,
		Metrics:   counters,
		Tolerance: cfg.ReconcileTolerance,
	}

	registry := appWebhook.NewRegistry()
	eventHandlers := &appWebhook.Handlers{
		Checkouts: checkoutService,
		Accounts:  accountRepo,
		Ledger:    ledgerRepo,
		Payouts:   payoutRepo,
		Fees:      calculator,
		Logger:    logger,
	}
	eventHandlers.RegisterAll(registry)

	ingestion := &appWebhook.Processor{
		Repo:       webhookRepo,
		Registry:   registry,
		Secret:     cfg.WebhookSecret,
		SkewWindow: cfg.SkewWindow,
		Logger:     logger,
		Metrics:    counters,
	}

	sweeper := &appCheckout.Sweeper{
		Service:  checkoutService,
		Interval: cfg.SweepInterval,
		Logger:   logger,
	}
	go sweeper.Run(context.Background())

	router := httpapi.NewRouter(&httpapi.Handlers{
		Accounts:  accountService,
		Checkouts: checkoutService,
		Webhooks:  ingestion,
		Transfers: transferService,
		Payouts:   reconciler,
	})

	log.Println("settlement server listening on :" + cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
