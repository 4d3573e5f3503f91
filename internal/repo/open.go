package meta

import (
	"context"
	"strings"
	"time"

	"github.com/sir_venger/multipart_lite/internal/models"
)

// Store: хранилище манифестов загрузок.
type Store interface {
	Get(ctx context.Context, id string) (models.Upload, error)
	Save(ctx context.Context, u models.Upload) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, olderThan time.Time) ([]models.Upload, error)
	Close()
}

// IsMemoryDSN сообщает, что dsn выбирает хранилище в памяти.
func IsMemoryDSN(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	return dsn == "" || strings.HasPrefix(dsn, "memory://")
}

// Open выбирает реализацию по dsn: для пустого или memory:// берётся память, иначе Postgres.
func Open(ctx context.Context, dsn string) (Store, error) {
	if IsMemoryDSN(dsn) {
		return NewMemoryStore(), nil
	}
	return NewPGStore(ctx, dsn)
}
