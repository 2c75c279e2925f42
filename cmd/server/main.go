package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"quarters/internal/account"
	"quarters/internal/blob"
	"quarters/internal/checklist"
	checklisthandler "quarters/internal/checklist/handler"
	"quarters/internal/compliance"
	compliancehandler "quarters/internal/compliance/handler"
	"quarters/internal/inspection"
	inspectionhandler "quarters/internal/inspection/handler"
	"quarters/internal/jwttoken"
	"quarters/internal/notify"
	"quarters/internal/platform/config"
	"quarters/internal/platform/httpserver"
	"quarters/internal/platform/logger"
	"quarters/internal/platform/metrics"
	"quarters/internal/tenancy"
	httptransport "quarters/internal/transport/http"
	"quarters/pkg/platform/audit"
)

const auditInboxSize = 256

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence: postgres when DATABASE_URL is set, memory otherwise.
	var (
		db              *sql.DB
		tenancyStore    tenancy.Store
		checklistStore  checklist.Store
		inspectionStore inspection.Store
		accountStore    account.Store
		auditStore      audit.Store
		invoices        compliance.InvoiceReader
		documents       compliance.DocumentCounter
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to reach database", "error", err)
			os.Exit(1)
		}

		tenancyStore = tenancy.NewPostgres(db)
		checklistStore = checklist.NewPostgres(db)
		inspectionStore = inspection.NewPostgres(db)
		accountStore = account.NewPostgres(db)
		auditStore = audit.NewPostgres(db)
		invoices = compliance.NewPostgresInvoices(db)
		documents = compliance.NewPostgresDocuments(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		tenancyStore = tenancy.NewInMemory()
		checklistStore = checklist.NewInMemory()
		inspectionStore = inspection.NewInMemory()
		accountStore = account.NewInMemory()
		auditStore = audit.NewInMemoryStore()
		invoices = compliance.NewInMemoryInvoices()
		documents = compliance.NewInMemoryDocuments()
	}

	blobStore, err := blob.Open(ctx, cfg)
	if err != nil {
		log.Error("failed to open blob store", "error", err)
		os.Exit(1)
	}

	// Audit pipeline: non-blocking publisher, background worker draining into
	// the store.
	inbox := make(chan audit.Event, auditInboxSize)
	auditor := audit.NewPublisher(inbox, log)
	worker := audit.NewWorker(auditStore, inbox, log)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	m := metrics.New()
	insuranceReader := account.NewInsuranceAdapter(accountStore)
	notifier := notify.NewLogNotifier(log)
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "quarters")

	checklistService := checklist.NewService(checklistStore, tenancyStore, insuranceReader, auditor)
	inspectionService := inspection.NewService(inspectionStore, tenancyStore, accountStore, blobStore, notifier, auditor, log)
	complianceService := compliance.NewService(tenancyStore, checklistStore, insuranceReader, accountStore, invoices, documents)

	router := httptransport.NewRouter(log, m, jwtService,
		checklisthandler.New(checklistService, log, m),
		inspectionhandler.New(inspectionService, log, m),
		compliancehandler.New(complianceService, log, m),
	)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting quarters", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
