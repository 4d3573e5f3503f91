package resthttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/multipart_lite/internal/config"
	meta "github.com/sir_venger/multipart_lite/internal/repo"
	"github.com/sir_venger/multipart_lite/internal/usecase/uploadsvc"
)

type Server struct {
	Uploads uploadsvc.Service
	Cfg     *config.Config
	Logger  *slog.Logger

	store meta.Store
}

// NewServer конструктор
func NewServer(cfg *config.Config, logger *slog.Logger) (http.Handler, *Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := meta.Open(context.Background(), cfg.MetaDSN)
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{
		Uploads: uploadsvc.New(uploadsvc.Deps{
			MetaStorage:    store,
			UploadDir:      cfg.UploadDir,
			AlwaysUseFiles: cfg.AlwaysUseFiles,
			Logger:         logger,
		}),
		Cfg:    cfg,
		Logger: logger,
		store:  store,
	}

	return srv.Routes(), srv, nil
}

// Routes собирает chi-маршрутизатор поверх сервиса загрузок.
func (s *Server) Routes() http.Handler {
	rtr := chi.NewRouter()
	rtr.Post("/uploads", s.postUploads)
	rtr.Get("/uploads", s.listUploads)
	rtr.Get("/uploads/{id}", s.getUpload)
	rtr.Get("/uploads/{id}/manifest", s.getManifest)
	rtr.Delete("/uploads/{id}", s.deleteUpload)
	rtr.Post("/admin/gc", s.gcOnce)
	rtr.Get("/admin/config", func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, s.Cfg) })
	rtr.Get("/health", s.health)

	return rtr
}

// Close освобождает хранилище манифестов.
func (s *Server) Close() {
	if s.store != nil {
		s.store.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
