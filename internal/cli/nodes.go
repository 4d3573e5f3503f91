package cli

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// formNodes собирает части multipart/form-data из флагов вида name=value и name=path.
func formNodes(fields, files []string) ([]multipart.Node, error) {
	nodes := make([]multipart.Node, 0, len(fields)+len(files))
	for _, f := range fields {
		name, value, err := splitPair(f)
		if err != nil {
			return nil, fmt.Errorf("--field: %w", err)
		}
		nodes = append(nodes, &multipart.Part{
			Header: multipart.NewHeader(multipart.Field{
				Name:  "Content-Disposition",
				Value: fmt.Sprintf("form-data; name=%q", name),
			}),
			Body: []byte(value),
		})
	}

	for _, f := range files {
		name, path, err := splitPair(f)
		if err != nil {
			return nil, fmt.Errorf("--file: %w", err)
		}
		ctype := mime.TypeByExtension(filepath.Ext(path))
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		nodes = append(nodes, multipart.NewFilePart(multipart.NewHeader(
			multipart.Field{
				Name:  "Content-Disposition",
				Value: fmt.Sprintf("form-data; name=%q; filename=%q", name, filepath.Base(path)),
			},
			multipart.Field{Name: "Content-Type", Value: ctype},
		), path))
	}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("nothing to send: pass --field or --file")
	}
	return nodes, nil
}

func splitPair(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("%q is not name=value", s)
	}
	return name, value, nil
}

// releaseFiles оставляет временные файлы дерева на диске после выхода.
func releaseFiles(nodes []multipart.Node) {
	multipart.Walk(nodes, func(n multipart.Node) {
		if fp, ok := n.(*multipart.FilePart); ok {
			fp.ReleaseOwnership()
		}
	})
}
