package meta

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/multipart_lite/internal/models"
)

func sampleUpload(id string, created time.Time) models.Upload {
	return models.Upload{
		ID:          id,
		ContentType: "multipart/form-data; boundary=x",
		CreatedAt:   created,
		Size:        3,
		Entries: []models.Entry{{
			Kind:    models.KindPart,
			Headers: []models.HeaderField{
				{Name: "Content-Disposition", Value: []byte(`form-data; name="a"`)},
				{Name: "X-Note", Value: []byte("caf\xe9")},
			},
			Body: []byte("abc"),
			Size: 3,
		}},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)

	now := time.Now()
	require.NoError(t, s.Save(ctx, sampleUpload("b", now)))
	require.NoError(t, s.Save(ctx, sampleUpload("a", now.Add(-time.Hour))))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, sampleUpload("b", now), got)

	// Изменение копии не затрагивает хранилище.
	got.Entries[0].Body[0] = 'X'
	again, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again.Entries[0].Body))

	all, err := s.List(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)

	old, err := s.List(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, "a", old[0].ID)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.ErrorIs(t, s.Delete(ctx, "a"), models.ErrNotFound)
}

func TestOpen(t *testing.T) {
	for _, dsn := range []string{"", "  ", "memory://", "memory://test"} {
		s, err := Open(context.Background(), dsn)
		require.NoError(t, err, dsn)
		assert.IsType(t, &MemoryStore{}, s, dsn)
	}
	assert.False(t, IsMemoryDSN("postgres://localhost/db"))
}
