package uploadsvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sir_venger/multipart_lite/internal/models"
	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// Rendering: дерево узлов для повторной отдачи загрузки и её Content-Type.
// FilePart в Nodes не владеют файлами.
type Rendering struct {
	ContentType string
	Boundary    string
	Nodes       []multipart.Node
}

// Render восстанавливает дерево узлов из манифеста. Граница берётся из исходного
// Content-Type: исходное тело её не содержало, значит и повторное не содержит.
func (s *Uploads) Render(ctx context.Context, id string) (Rendering, error) {
	up, err := s.MetaStorage.Get(ctx, id)
	if err != nil {
		return Rendering{}, err
	}

	dir := s.uploadDir(id)
	if !isComplete(dir) {
		return Rendering{}, models.ErrIncomplete
	}

	boundary, err := multipart.Boundary(multipart.NewHeader(multipart.Field{Name: "Content-Type", Value: up.ContentType}))
	if err != nil {
		return Rendering{}, fmt.Errorf("stored content type: %w", err)
	}

	nodes, err := buildNodes(dir, up.Entries)
	if err != nil {
		return Rendering{}, err
	}

	return Rendering{
		ContentType: up.ContentType,
		Boundary:    boundary,
		Nodes:       nodes,
	}, nil
}

func buildNodes(dir string, entries []models.Entry) ([]multipart.Node, error) {
	nodes := make([]multipart.Node, 0, len(entries))
	for _, e := range entries {
		h := models.HeaderOf(e.Headers)
		switch e.Kind {
		case models.KindPart:
			nodes = append(nodes, &multipart.Part{Header: h, Body: e.Body})
		case models.KindFile:
			fp := multipart.NewFilePart(h, filepath.Join(dir, e.File))
			fp.Size = e.Size
			nodes = append(nodes, fp)
		case models.KindMultipart:
			children, err := buildNodes(dir, e.Children)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &multipart.Multipart{Header: h, Nodes: children})
		default:
			return nil, fmt.Errorf("unknown entry kind %q", e.Kind)
		}
	}
	return nodes, nil
}

// Delete удаляет манифест и каталог загрузки.
func (s *Uploads) Delete(ctx context.Context, id string) error {
	if err := s.MetaStorage.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.RemoveAll(s.uploadDir(id)); err != nil {
		return fmt.Errorf("remove upload dir: %w", err)
	}
	s.Logger.Info("upload deleted", "upload_id", id)
	return nil
}
