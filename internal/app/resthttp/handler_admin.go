package resthttp

import (
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sir_venger/multipart_lite/pkg/httperrors"
)

type gcResp struct {
	Removed int `json:"removed"`
}

// gcOnce вручную запускает сбор незавершённых каталогов; ?ttl= переопределяет gc_ttl.
func (s *Server) gcOnce(w http.ResponseWriter, r *http.Request) {
	ttl := s.Cfg.GCTTL
	if v := r.URL.Query().Get("ttl"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			http.Error(w, "ttl: "+err.Error(), http.StatusBadRequest)
			return
		}
		ttl = d
	}

	n, err := s.Uploads.Sweep(ttl)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gcResp{Removed: n})
}

// healthStats: payload ответа /health.
type healthStats struct {
	OK         bool  `json:"ok"`
	TotalBytes int64 `json:"total_bytes"`
}

// health возвращает суммарный объём каталога загрузок.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	var total int64
	err := filepath.WalkDir(s.Cfg.UploadDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, healthStats{OK: true, TotalBytes: total})
}
