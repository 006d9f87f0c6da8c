package geoip

import (
	"bytes"
	"context"
	"errors"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"geosift/internal/support"
)

// The snapshot cache lets a fleet of instances share one downloaded CSV so
// only one node hits the upstream mirror per expiry window.
const (
	snapshotRedisKey = "geosift:geoip:csv"
	snapshotTTL      = 7 * 24 * time.Hour
	snapshotTimeout  = 30 * time.Second
)

// fetchSnapshotFromCache tries to materialize the reference CSV from Redis.
// Returns false when Redis is not configured, the key is absent, or any step
// fails; all of those just fall through to a fresh download.
func fetchSnapshotFromCache(ctx context.Context, path string) bool {
	client, err := support.GetRedisClient(ctx)
	if err != nil {
		if !errors.Is(err, support.ErrRedisNotConfigured) {
			log.Warn("Snapshot cache unavailable", "error", err)
		}
		return false
	}

	opCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	data, err := client.Get(opCtx, snapshotRedisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		log.Warn("Snapshot cache read failed", "error", err)
		return false
	}
	if len(data) == 0 {
		return false
	}

	if err := writeToFile(path, bytes.NewReader(data)); err != nil {
		log.Warn("Failed to write cached snapshot", "path", path, "error", err)
		return false
	}

	log.Info("Reference CSV restored from snapshot cache", "path", path, "bytes", len(data))
	return true
}

// publishSnapshotToCache uploads the freshly downloaded CSV for other
// instances. Best effort only.
func publishSnapshotToCache(ctx context.Context, path string) {
	client, err := support.GetRedisClient(ctx)
	if err != nil {
		if !errors.Is(err, support.ErrRedisNotConfigured) {
			log.Warn("Snapshot cache unavailable", "error", err)
		}
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to read snapshot for publishing", "path", path, "error", err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	if err := client.Set(opCtx, snapshotRedisKey, data, snapshotTTL).Err(); err != nil {
		log.Warn("Failed to publish snapshot to cache", "error", err)
		return
	}

	log.Info("Reference CSV published to snapshot cache", "bytes", len(data))
}
