package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/community-clarity/civic-sync/src/civicsync"
	"github.com/community-clarity/civic-sync/src/config"
	"github.com/community-clarity/civic-sync/src/data"
	"github.com/community-clarity/civic-sync/src/malegislature"
	"github.com/community-clarity/civic-sync/src/metrics"
	"github.com/community-clarity/civic-sync/src/webclient"
	"github.com/community-clarity/civic-sync/src/webserver"
)

var allModels = []interface{}{
	&data.CivicEvent{}, &data.APIIntegration{},
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)
	store := data.NewStore(db)

	rdb := data.MustRedis(cfg.RedisURL)

	web := webclient.New(cfg.RequestTimeout, cfg.UserAgent)
	client := malegislature.NewClient(web, cfg.ListingURL, cfg.APIBaseURL)
	lock := data.NewRunLock(rdb, civicsync.SourceName, cfg.RunLockTTL)
	m := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)

	orch := civicsync.New(client, store, lock, m, civicsync.Config{
		Workers:     cfg.WorkerCount,
		UpstreamRPS: cfg.UpstreamRPS,
		StatusTTL:   cfg.StatusTTL,
		Endpoint:    cfg.APIBaseURL + "/",
	})
	orch.OnSummary(func(ctx context.Context, sum civicsync.Summary) {
		payload, err := json.Marshal(sum)
		if err != nil {
			return
		}
		if err := data.CacheLastSummary(ctx, rdb, civicsync.SourceName, string(payload), cfg.StatusTTL); err != nil {
			log.Printf("summary cache: %v", err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go civicsync.StartScheduler(ctx, orch, cfg.SyncInterval)

	router := webserver.New(webserver.NewSync(orch, store, rdb, cfg.OnDemandLimit))
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("civic-sync listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
