// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/stakering/stakering/internal/accessgate"
	"github.com/stakering/stakering/internal/auth"
	"github.com/stakering/stakering/internal/cache"
	"github.com/stakering/stakering/internal/config"
	"github.com/stakering/stakering/internal/database"
	"github.com/stakering/stakering/internal/game"
	"github.com/stakering/stakering/internal/handlers"
	"github.com/stakering/stakering/internal/ledger"
	"github.com/stakering/stakering/internal/middleware"
)

// pgAuditor adapts the database audit functions to the handlers.Auditor interface.
type pgAuditor struct{}

func (pgAuditor) RecordSettlement(ctx context.Context, r game.PayoutReceipt) error {
	return database.RecordSettlement(ctx, r)
}
func (pgAuditor) RecordForfeit(ctx context.Context, r game.ForfeitReceipt) error {
	return database.RecordForfeit(ctx, r)
}
func (pgAuditor) RecordExpiration(ctx context.Context, r game.ExpirationReceipt) error {
	return database.RecordExpiration(ctx, r)
}

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Ledger: postgres when PG_HOST is configured, in-memory otherwise.
	var l ledger.Ledger
	usePostgres := os.Getenv("PG_HOST") != ""
	if usePostgres {
		database.ConnectDB()
		l = ledger.NewPostgresLedger(database.DB)
	} else {
		logger.Warn("PG_HOST not set, running with in-memory ledger")
		l = ledger.NewMemoryLedger()
	}

	engine := game.NewEngine(l, game.Rules{
		MinimumStake:     cfg.MinimumStake,
		FeePercent:       cfg.FeePercent,
		ExpirationWindow: cfg.ExpirationWindow,
		FeeRecipient:     cfg.FeeRecipient,
	})

	gate := accessgate.NewStaticGate(cfg.AdminAccounts)

	srv := handlers.NewServer(logger, engine, gate)
	if usePostgres {
		srv.Audit = pgAuditor{}
	}
	if cfg.AdminPassword != "" {
		hash, err := auth.CreateHash(cfg.AdminPassword, auth.Params)
		if err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		srv.AdminPasswordHash = hash
	}

	// Optional redis queue for downstream consumers of transition records.
	publishToRedis := false
	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		publishToRedis = true
	}

	// Fan every transition record out to the log, the websocket feed, and
	// (when configured) the redis queue.
	engine.RecordFn = func(ev game.Event) {
		logger.WithFields(logrus.Fields{
			"type":    ev.Type,
			"game_id": ev.GameID,
			"amount":  ev.Amount,
		}).Info("game event")
		srv.Hub.Broadcast(ev)
		if publishToRedis {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := cache.PublishGameEvent(ctx, ev); err != nil {
				logger.Errorf("failed to publish event to redis: %v", err)
			}
			cancel()
		}
	}

	mux := srv.Routes()

	addr := ":" + cfg.Port
	logger.Infof("Running on %s (stake=%d fee=%d%% window=%s)",
		addr, cfg.MinimumStake, cfg.FeePercent, cfg.ExpirationWindow)
	if err := http.ListenAndServe(addr, middleware.LogMiddleware(logger)(mux)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
