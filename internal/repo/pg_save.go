package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/sir_venger/multipart_lite/internal/models"
)

// Save записывает (или обновляет) манифест загрузки.
func (s *PGStore) Save(ctx context.Context, u models.Upload) error {
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("upload id is empty")
	}
	if u.Entries == nil {
		u.Entries = []models.Entry{}
	}

	entriesJSON, err := json.Marshal(u.Entries)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}

	sqlStr, args, err := psql.
		Insert(uploadsTable).
		Columns(uploadColumns...).
		Values(u.ID, u.ContentType, u.CreatedAt, u.Size, u.Files, entriesJSON).
		Suffix(`
					ON CONFLICT (id) DO UPDATE
					SET content_type = EXCLUDED.content_type,
						created_at   = EXCLUDED.created_at,
						size         = EXCLUDED.size,
						files        = EXCLUDED.files,
						entries      = EXCLUDED.entries`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert sql: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec upsert: %w", err)
	}

	return nil
}

// Delete удаляет манифест; при отсутствии строки возвращает models.ErrNotFound.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := psql.
		Delete(uploadsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete sql: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("exec delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
