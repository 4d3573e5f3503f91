package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/sir_venger/multipart_lite/internal/models"
)

var uploadColumns = []string{"id", "content_type", "created_at", "size", "files", "entries"}

// Get возвращает манифест загрузки по её идентификатору.
func (s *PGStore) Get(ctx context.Context, id string) (models.Upload, error) {
	if strings.TrimSpace(id) == "" {
		return models.Upload{}, fmt.Errorf("upload id is empty")
	}

	sqlStr, args, err := psql.
		Select(uploadColumns...).
		From(uploadsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return models.Upload{}, fmt.Errorf("build select: %w", err)
	}

	u, err := scanUpload(s.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Upload{}, models.ErrNotFound
		}
		return models.Upload{}, err
	}

	return u, nil
}

// List возвращает манифесты старше olderThan (все при нулевом времени) по возрастанию created_at.
func (s *PGStore) List(ctx context.Context, olderThan time.Time) ([]models.Upload, error) {
	q := psql.Select(uploadColumns...).From(uploadsTable).OrderBy("created_at", "id")
	if !olderThan.IsZero() {
		q = q.Where(sq.Lt{"created_at": olderThan})
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	var out []models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}

	return out, rows.Err()
}

func scanUpload(row pgx.Row) (models.Upload, error) {
	var (
		u          models.Upload
		entriesRaw []byte
	)
	if err := row.Scan(&u.ID, &u.ContentType, &u.CreatedAt, &u.Size, &u.Files, &entriesRaw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Upload{}, err
		}
		return models.Upload{}, fmt.Errorf("scan upload row: %w", err)
	}

	if err := json.Unmarshal(entriesRaw, &u.Entries); err != nil {
		return models.Upload{}, fmt.Errorf("unmarshal entries: %w", err)
	}

	return u, nil
}
