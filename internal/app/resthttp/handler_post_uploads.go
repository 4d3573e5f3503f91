package resthttp

import (
	"net/http"

	"github.com/sir_venger/multipart_lite/pkg/httperrors"
	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// postUploadsResp: тело ответа со сводкой принятой загрузки.
type postUploadsResp struct {
	UploadID string `json:"upload_id"`
	Size     int64  `json:"size"`
	Files    int    `json:"files"`
	Parts    int    `json:"parts"`
}

// postUploads принимает multipart-тело и полностью делегирует разбор сервису загрузок.
func (s *Server) postUploads(w http.ResponseWriter, r *http.Request) {
	up, err := s.Uploads.Accept(r.Context(), multipart.HeaderFromHTTP(r.Header), r.Body)
	if err != nil {
		s.Logger.Warn("upload rejected", "err", err, "status", httperrors.Status(err))
		httperrors.Write(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, postUploadsResp{
		UploadID: up.ID,
		Size:     up.Size,
		Files:    up.Files,
		Parts:    up.Parts(),
	})
}
