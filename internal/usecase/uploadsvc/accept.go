package uploadsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sir_venger/multipart_lite/internal/models"
	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// Accept разбирает multipart-тело, переносит файловые части в каталог загрузки
// и сохраняет манифест. При любой ошибке каталог загрузки удаляется.
func (s *Uploads) Accept(ctx context.Context, h multipart.Header, body io.Reader) (models.Upload, error) {
	contentType, _, err := h.Text("Content-Type")
	if err != nil {
		return models.Upload{}, err
	}

	nodes, err := multipart.ReadMultipartBody(body, h, s.AlwaysUseFiles)
	if err != nil {
		return models.Upload{}, err
	}
	// Перенесённые файлы уже не принадлежат узлам, Close для них ничего не делает.
	defer multipart.CloseNodes(nodes)

	if len(nodes) == 0 {
		return models.Upload{}, models.ErrEmptyUpload
	}
	if err := ctx.Err(); err != nil {
		return models.Upload{}, err
	}

	up := models.Upload{
		ID:          uuid.NewString(),
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	dir := s.uploadDir(up.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return models.Upload{}, fmt.Errorf("create upload dir: %w", err)
	}

	if err := s.store(ctx, dir, &up, nodes); err != nil {
		_ = os.RemoveAll(dir)
		return models.Upload{}, err
	}

	s.Logger.Info("upload accepted",
		"upload_id", up.ID,
		"parts", up.Parts(),
		"files", up.Files,
		"size", up.Size,
	)
	return up, nil
}

func (s *Uploads) store(ctx context.Context, dir string, up *models.Upload, nodes []multipart.Node) error {
	entries, err := s.entries(dir, up, nodes)
	if err != nil {
		return err
	}
	up.Entries = entries

	if err := s.MetaStorage.Save(ctx, *up); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	// Маркер пишется последним: без него каталог считается незавершённым и попадёт под GC.
	if err := markComplete(dir); err != nil {
		_ = s.MetaStorage.Delete(ctx, up.ID)
		return err
	}
	return nil
}

func (s *Uploads) entries(dir string, up *models.Upload, nodes []multipart.Node) ([]models.Entry, error) {
	out := make([]models.Entry, 0, len(nodes))
	for _, node := range nodes {
		var e models.Entry
		switch n := node.(type) {
		case *multipart.Part:
			e = models.Entry{
				Kind:    models.KindPart,
				Headers: models.FieldsOf(n.Header),
				Body:    n.Body,
				Size:    int64(len(n.Body)),
			}
			up.Size += e.Size
		case *multipart.FilePart:
			name, _, err := n.Filename()
			if err != nil {
				return nil, err
			}
			up.Files++
			stored := strconv.Itoa(up.Files)
			dst := filepath.Join(dir, stored)
			if err := moveFile(n.Path, dst); err != nil {
				return nil, err
			}
			// Файл переехал, временный каталог больше не нужен.
			_ = os.Remove(n.TempDir())
			n.ReleaseOwnership()

			sum, err := fileSHA256(dst)
			if err != nil {
				return nil, err
			}

			e = models.Entry{
				Kind:     models.KindFile,
				Headers:  models.FieldsOf(n.Header),
				File:     stored,
				Filename: name,
				Sha256:   sum,
				Size:     n.Size,
			}
			up.Size += e.Size
		case *multipart.Multipart:
			children, err := s.entries(dir, up, n.Nodes)
			if err != nil {
				return nil, err
			}
			e = models.Entry{
				Kind:     models.KindMultipart,
				Headers:  models.FieldsOf(n.Header),
				Children: children,
			}
		default:
			return nil, fmt.Errorf("unsupported node %T", node)
		}
		out = append(out, e)
	}
	return out, nil
}

// moveFile переименовывает файл, а между файловыми системами копирует и удаляет исходник.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
