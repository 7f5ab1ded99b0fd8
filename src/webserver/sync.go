package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/community-clarity/civic-sync/src/civicsync"
	"github.com/community-clarity/civic-sync/src/data"
)

// Runner is the orchestration surface the handlers need.
type Runner interface {
	Run(ctx context.Context, opts civicsync.RunOptions) (civicsync.Summary, error)
}

type Sync struct {
	runner Runner
	store  data.EventStore
	rdb    *redis.Client
	limit  int
}

func NewSync(runner Runner, store data.EventStore, rdb *redis.Client, limit int) Sync {
	if limit <= 0 {
		limit = 10
	}
	return Sync{runner: runner, store: store, rdb: rdb, limit: limit}
}

// Trigger runs a bounded sync and returns the run summary. Per-hearing
// failures still produce a success response with a non-zero error count; a
// failure response means the orchestrator itself could not produce a
// summary.
func (h Sync) Trigger(c *gin.Context) {
	sum, err := h.runner.Run(c.Request.Context(), civicsync.RunOptions{
		Limit:   h.limit,
		Trigger: civicsync.TriggerHTTP,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, civicsync.ErrRunInProgress) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{
			"success":   false,
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"message":            "MA Legislature sync completed successfully",
		"hearingsDiscovered": sum.Discovered,
		"hearingsProcessed":  sum.Processed,
		"hearingsSynced":     sum.Synced,
		"errors":             sum.Errors,
		"timestamp":          sum.FinishedAt.Format(time.RFC3339),
	})
}

// Status returns the integration bookkeeping row plus the cached summary of
// the most recent run, when one exists.
func (h Sync) Status(c *gin.Context) {
	row, err := h.store.LatestIntegration(civicsync.IntegrationName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "no sync recorded"})
		return
	}

	resp := gin.H{"integration": row}
	if h.rdb != nil {
		if raw, err := data.LastSummary(c.Request.Context(), h.rdb, civicsync.SourceName); err == nil {
			var sum civicsync.Summary
			if json.Unmarshal([]byte(raw), &sum) == nil {
				resp["lastRun"] = sum
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}
