package resthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/multipart_lite/pkg/httperrors"
)

func (s *Server) getManifest(w http.ResponseWriter, r *http.Request) {
	up, err := s.Uploads.Manifest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, up)
}

// listUploads возвращает манифесты; ?older_than=1h оставляет только созданные раньше.
func (s *Server) listUploads(w http.ResponseWriter, r *http.Request) {
	var before time.Time
	if v := r.URL.Query().Get("older_than"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			http.Error(w, "older_than: "+err.Error(), http.StatusBadRequest)
			return
		}
		before = time.Now().Add(-d)
	}

	ups, err := s.Uploads.List(r.Context(), before)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ups)
}

func (s *Server) deleteUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.Uploads.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httperrors.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
