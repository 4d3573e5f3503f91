package resthttp

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sir_venger/multipart_lite/internal/usecase/uploadsvc"
	"github.com/sir_venger/multipart_lite/pkg/httperrors"
	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// getUpload отдаёт загрузку обратно multipart-телом. С ?transfer=chunked тело
// кадрируется самостоятельно поверх перехваченного соединения.
func (s *Server) getUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rnd, err := s.Uploads.Render(r.Context(), id)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	if r.URL.Query().Get("transfer") == "chunked" {
		if err := s.writeChunked(w, rnd); err != nil {
			s.Logger.Warn("chunked replay failed", "upload_id", id, "err", err)
		}
		return
	}

	size, err := multipart.BodySize(rnd.Boundary, rnd.Nodes)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", rnd.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	if _, err := multipart.WriteMultipart(w, rnd.Boundary, rnd.Nodes); err != nil {
		// Заголовки уже ушли, остаётся только оборвать ответ.
		s.Logger.Warn("replay failed", "upload_id", id, "err", err)
	}
}

func (s *Server) writeChunked(w http.ResponseWriter, rnd uploadsvc.Rendering) error {
	hj, ok := w.(http.Hijacker)
	if !ok {
		err := errors.New("connection does not support hijacking")
		http.Error(w, err.Error(), http.StatusNotImplemented)
		return err
	}

	conn, rw, err := hj.Hijack()
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(rw,
		"HTTP/1.1 200 OK\r\nContent-Type: %s\r\nTransfer-Encoding: chunked\r\nConnection: close\r\n\r\n",
		rnd.ContentType,
	); err != nil {
		return err
	}
	if err := multipart.WriteMultipartChunked(rw, rnd.Boundary, rnd.Nodes); err != nil {
		return err
	}

	return rw.Flush()
}
