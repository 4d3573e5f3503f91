package meta

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/multipart_lite/internal/models"
)

// Тест ходит в живой Postgres: META_TEST_DSN=postgres://... go test ./internal/repo/
func TestPGStore(t *testing.T) {
	dsn := os.Getenv("META_TEST_DSN")
	if dsn == "" {
		t.Skip("META_TEST_DSN is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, ApplyMigrations(ctx, dsn))
	s, err := NewPGStore(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	id := uuid.NewString()
	created := time.Now().UTC().Truncate(time.Microsecond)
	want := sampleUpload(id, created)
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want.Entries, got.Entries)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))

	listed, err := s.List(ctx, created.Add(time.Second))
	require.NoError(t, err)
	assert.NotEmpty(t, listed)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, id), models.ErrNotFound)
}

func TestNewPGStore_EmptyDSN(t *testing.T) {
	_, err := NewPGStore(context.Background(), " ")
	assert.Error(t, err)
	assert.Error(t, ApplyMigrations(context.Background(), ""))
}
