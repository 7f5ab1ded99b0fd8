package civicsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/community-clarity/civic-sync/src/data"
	"github.com/community-clarity/civic-sync/src/malegislature"
	"github.com/community-clarity/civic-sync/src/metrics"
)

// Trigger tags recorded in the integration-status provenance blob.
const (
	TriggerHTTP  = "http"
	TriggerTimer = "timer"
)

// ErrRunInProgress reports that another run holds the source lock.
var ErrRunInProgress = errors.New("sync run already in progress")

// Fetcher is the portal surface the orchestrator drives.
type Fetcher interface {
	FetchListing(ctx context.Context) (string, error)
	FetchHearing(ctx context.Context, id string) (*malegislature.RawHearing, error)
}

// Locker serializes runs across triggers and processes.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// RunOptions parameterize one sync run. Limit 0 processes the full
// discovered set.
type RunOptions struct {
	Limit   int
	Trigger string
}

// Summary is the terminal output of one run.
type Summary struct {
	RunID      string    `json:"runId"`
	Trigger    string    `json:"trigger"`
	Discovered int       `json:"hearingsDiscovered"`
	Processed  int       `json:"hearingsProcessed"`
	Synced     int       `json:"hearingsSynced"`
	Errors     int       `json:"errors"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Config sizes one orchestrator.
type Config struct {
	Workers     int
	UpstreamRPS float64
	StatusTTL   time.Duration
	Endpoint    string
}

// Orchestrator coordinates one sync run end to end: discovery, the
// fetch→normalize→dedup→write batch, and the final status upsert.
type Orchestrator struct {
	fetcher    Fetcher
	store      data.EventStore
	normalizer *Normalizer
	lock       Locker
	limiter    *rate.Limiter
	metrics    *metrics.SyncMetrics
	workers    int
	statusTTL  time.Duration
	endpoint   string
	onSummary  func(context.Context, Summary)
}

func New(fetcher Fetcher, store data.EventStore, lock Locker, m *metrics.SyncMetrics, cfg Config) *Orchestrator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	limit := rate.Inf
	if cfg.UpstreamRPS > 0 {
		limit = rate.Limit(cfg.UpstreamRPS)
	}
	ttl := cfg.StatusTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = malegislature.DefaultAPIBaseURL + "/"
	}
	return &Orchestrator{
		fetcher:    fetcher,
		store:      store,
		normalizer: NewNormalizer(),
		lock:       lock,
		limiter:    rate.NewLimiter(limit, 1),
		metrics:    m,
		workers:    workers,
		statusTTL:  ttl,
		endpoint:   endpoint,
	}
}

// OnSummary registers a callback invoked after each completed run.
func (o *Orchestrator) OnSummary(fn func(context.Context, Summary)) {
	o.onSummary = fn
}

// Run executes one Discovering → ProcessingBatch → Finalizing cycle.
// Per-hearing failures are counted, never propagated; the only errors
// returned are a held run lock or a lock-layer failure.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	sum := Summary{
		RunID:     uuid.NewString(),
		Trigger:   opts.Trigger,
		StartedAt: time.Now().UTC(),
	}

	if o.lock != nil {
		ok, err := o.lock.Acquire(ctx)
		if err != nil {
			return sum, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return sum, ErrRunInProgress
		}
		defer func() {
			if err := o.lock.Release(context.Background()); err != nil {
				log.Printf("sync: release run lock: %v", err)
			}
		}()
	}

	ids := o.discover(ctx)
	sum.Discovered = len(ids)

	batch := ids
	if opts.Limit > 0 && len(batch) > opts.Limit {
		batch = batch[:opts.Limit]
	}
	sum.Processed = len(batch)

	synced, errCount := o.processBatch(ctx, batch)
	sum.Synced = synced
	sum.Errors = errCount
	sum.FinishedAt = time.Now().UTC()

	o.finalize(ctx, &sum)
	return sum, nil
}

func (o *Orchestrator) discover(ctx context.Context) []string {
	page, err := o.fetcher.FetchListing(ctx)
	if err != nil {
		log.Printf("sync: listing fetch failed, using fallback batch: %v", err)
		return malegislature.FallbackHearingIDs()
	}
	ids := malegislature.ExtractHearingIDs(page)
	log.Printf("sync: found %d hearing ids", len(ids))
	if len(ids) == 0 {
		log.Printf("sync: no hearing ids in listing, using fallback batch")
		return malegislature.FallbackHearingIDs()
	}
	return ids
}

// processBatch runs the per-hearing pipeline over the batch with a bounded
// worker pool. A failure in one worker never cancels its siblings.
func (o *Orchestrator) processBatch(ctx context.Context, batch []string) (synced, errCount int) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	sem := make(chan struct{}, o.workers)
	for _, id := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()

			created, err := o.processHearing(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errCount++
				log.Printf("sync: hearing %s: %v", id, err)
				return
			}
			if created {
				synced++
			}
		}(id)
	}
	wg.Wait()
	return synced, errCount
}

func (o *Orchestrator) processHearing(ctx context.Context, id string) (bool, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return false, err
	}

	raw, err := o.fetcher.FetchHearing(ctx, id)
	if err != nil {
		return false, err
	}
	ev, err := o.normalizer.Normalize(raw, id)
	if err != nil {
		return false, err
	}

	exists, err := o.store.Exists(ev.Title, ev.Organizer)
	if err != nil {
		return false, err
	}
	if exists {
		log.Printf("sync: hearing already exists: %s", ev.Title)
		return false, nil
	}

	if err := o.store.InsertEvent(ev); err != nil {
		if errors.Is(err, data.ErrDuplicate) {
			// Lost the write race to an overlapping run.
			return false, nil
		}
		return false, err
	}
	log.Printf("sync: synced hearing: %s", ev.Title)
	return true, nil
}

// finalize upserts the integration-status row exactly once per run,
// regardless of how the batch went, then records metrics and hands the
// summary to the registered callback.
func (o *Orchestrator) finalize(ctx context.Context, sum *Summary) {
	blob, _ := json.Marshal(map[string]interface{}{
		"hearings":  sum.Synced,
		"last_sync": sum.FinishedAt.Format(time.RFC3339),
		"source":    sum.Trigger,
	})
	if err := o.store.UpsertIntegration(IntegrationName, o.endpoint, string(blob), o.statusTTL); err != nil {
		log.Printf("sync: integration status upsert: %v", err)
	}

	if o.metrics != nil {
		o.metrics.Runs.WithLabelValues(sum.Trigger).Inc()
		o.metrics.Synced.Add(float64(sum.Synced))
		o.metrics.Errors.Add(float64(sum.Errors))
		o.metrics.Discovered.Set(float64(sum.Discovered))
		o.metrics.Duration.Observe(sum.FinishedAt.Sub(sum.StartedAt).Seconds())
	}

	if o.onSummary != nil {
		o.onSummary(ctx, *sum)
	}
}
