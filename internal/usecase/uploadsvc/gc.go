package uploadsvc

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const completeMarker = ".complete"

func markComplete(dir string) error {
	return os.WriteFile(filepath.Join(dir, completeMarker), nil, 0o600)
}

func isComplete(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, completeMarker))
	return err == nil
}

// Sweep однократно чистит каталог загрузок сервиса.
func (s *Uploads) Sweep(ttl time.Duration) (int, error) {
	n, err := SweepOnce(s.UploadDir, ttl)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Info("incomplete uploads removed", "count", n)
	}
	return n, nil
}

// StartGC стартует периодическую очистку каталога.
func StartGC(root string, ttl time.Duration, every time.Duration, logger *slog.Logger) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				if n, err := SweepOnce(root, ttl); err != nil {
					logger.Warn("upload gc failed", "err", err)
				} else if n > 0 {
					logger.Info("incomplete uploads removed", "count", n)
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// SweepOnce удаляет каталоги загрузок без маркера завершения, не менявшиеся дольше ttl,
// и возвращает их число. Отсутствие root не считается ошибкой.
func SweepOnce(root string, ttl time.Duration) (int, error) {
	now := time.Now()
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		dir := filepath.Join(root, e.Name())
		if isComplete(dir) {
			continue
		}

		fi, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(fi.ModTime()) < ttl {
			continue
		}

		if err := os.RemoveAll(dir); err == nil {
			removed++
		}
	}

	return removed, nil
}
