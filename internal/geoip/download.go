package geoip

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

const userAgent = "geosift-geoip-fetcher/1.0"

var (
	downloadGroup singleflight.Group
	httpClient    = &http.Client{Timeout: 60 * time.Second}
)

// EnsureData makes sure the reference CSV exists at path. Order of
// preference: the file on disk, the Redis snapshot cache (when configured),
// then a fresh download from url. A successful download is published back to
// the cache. Failure to acquire the data is fatal for the run.
func EnsureData(ctx context.Context, path, url string) error {
	_, err, _ := downloadGroup.Do(path, func() (interface{}, error) {
		if _, err := os.Stat(path); err == nil {
			log.Info("Reference CSV already exists", "path", path)
			return nil, nil
		}

		if fetchSnapshotFromCache(ctx, path) {
			return nil, nil
		}

		log.Info("Reference CSV not found, downloading", "path", path, "url", url)
		if err := download(ctx, path, url); err != nil {
			return nil, err
		}

		publishSnapshotToCache(ctx, path)
		return nil, nil
	})
	return err
}

func download(ctx context.Context, path, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download reference CSV: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("download reference CSV: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := writeToFile(path, resp.Body); err != nil {
		return fmt.Errorf("write reference CSV: %w", err)
	}

	log.Info("Reference CSV downloaded", "path", path)
	return nil
}

// writeToFile stages the data in a temp file and renames it into place so a
// failed download never leaves a truncated CSV behind.
func writeToFile(destPath string, data io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), "geoip-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := io.Copy(tmpFile, data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("copy data: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), destPath); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	return nil
}

// Cleanup removes the reference-data directory after a run. Best effort; the
// next run re-acquires the snapshot.
func Cleanup(path string) {
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}

	log.Info("Cleaning up reference-data directory", "dir", dir)
	if err := os.RemoveAll(dir); err != nil {
		log.Warn("Failed to remove reference-data directory", "dir", dir, "error", err)
		return
	}
	log.Info("Reference-data directory removed")
}
