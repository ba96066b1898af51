package uploads

import (
	"os"
	"path/filepath"
	"time"

	"neovault/storage"
	"neovault/utils"
)

// StartReaper launches a background goroutine that physically reclaims the
// bytes of files soft-deleted longer than the retention window, then drops
// their rows. It is best-effort and logs failures.
func StartReaper(store *storage.Store, dir string, interval, retention time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			cutoff := time.Now().Add(-retention)
			items, err := store.ListInactiveFilesBefore(cutoff, 100)
			if err != nil {
				utils.Sugar.Warnf("reaper query failed: %v", err)
				continue
			}
			for _, it := range items {
				if err := os.Remove(filepath.Join(dir, it.Filename)); err != nil && !os.IsNotExist(err) {
					utils.Sugar.Warnf("reaper could not remove bytes for %s: %v", it.ID, err)
					continue
				}
				if err := store.PurgeFile(it.ID); err != nil {
					utils.Sugar.Warnf("reaper could not purge row %s: %v", it.ID, err)
				}
			}
		}
	}()
}
