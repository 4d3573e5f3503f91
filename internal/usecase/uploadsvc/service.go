package uploadsvc

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/sir_venger/multipart_lite/internal/models"
	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

type (
	// MetaStorage хранилище манифестов загрузок
	MetaStorage interface {
		Get(ctx context.Context, id string) (models.Upload, error)
		Save(ctx context.Context, u models.Upload) error
		Delete(ctx context.Context, id string) error
		List(ctx context.Context, olderThan time.Time) ([]models.Upload, error)
	}

	// Service объединяет операции приёма, выдачи и удаления загрузок.
	Service interface {
		Accept(ctx context.Context, h multipart.Header, body io.Reader) (models.Upload, error)
		Render(ctx context.Context, id string) (Rendering, error)
		Manifest(ctx context.Context, id string) (models.Upload, error)
		List(ctx context.Context, olderThan time.Time) ([]models.Upload, error)
		Delete(ctx context.Context, id string) error
		Sweep(ttl time.Duration) (int, error)
	}
)

type Deps struct {
	MetaStorage    MetaStorage
	UploadDir      string
	AlwaysUseFiles bool
	Logger         *slog.Logger
}

type Uploads struct {
	Deps
}

// New конструирует сервис загрузок с заданными зависимостями.
func New(deps Deps) *Uploads {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Uploads{Deps: deps}
}

var _ Service = (*Uploads)(nil)

func (s *Uploads) uploadDir(id string) string {
	return filepath.Join(s.UploadDir, id)
}

// Manifest возвращает сохранённый манифест загрузки.
func (s *Uploads) Manifest(ctx context.Context, id string) (models.Upload, error) {
	return s.MetaStorage.Get(ctx, id)
}

func (s *Uploads) List(ctx context.Context, olderThan time.Time) ([]models.Upload, error) {
	return s.MetaStorage.List(ctx, olderThan)
}
