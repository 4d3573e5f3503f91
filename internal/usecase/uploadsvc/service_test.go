package uploadsvc

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/multipart_lite/internal/models"
	meta "github.com/sir_venger/multipart_lite/internal/repo"
	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

const formBody = "--AaB03x\r\n" +
	"Content-Disposition: form-data; name=\"submit-name\"\r\n" +
	"\r\n" +
	"Larry\r\n" +
	"--AaB03x\r\n" +
	"Content-Disposition: form-data; name=\"files\"\r\n" +
	"Content-Type: multipart/mixed; boundary=BbC04y\r\n" +
	"\r\n" +
	"--BbC04y\r\n" +
	"Content-Disposition: file; filename=\"file1.txt\"\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"... contents of file1.txt ...\r\n" +
	"--BbC04y\r\n" +
	"Content-Disposition: attachment; filename=\"file2.gif\"\r\n" +
	"Content-Type: image/gif\r\n" +
	"\r\n" +
	"GIF89a...\r\n" +
	"--BbC04y--\r\n" +
	"--AaB03x--\r\n"

const formContentType = "multipart/form-data; boundary=AaB03x"

func newTestService(t *testing.T) *Uploads {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())

	return New(Deps{
		MetaStorage: meta.NewMemoryStore(),
		UploadDir:   t.TempDir(),
	})
}

func requestHeader(contentType string) multipart.Header {
	return multipart.NewHeader(multipart.Field{Name: "Content-Type", Value: contentType})
}

func TestAccept_StoresManifestAndFiles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	up, err := svc.Accept(ctx, requestHeader(formContentType), strings.NewReader(formBody))
	require.NoError(t, err)

	assert.NotEmpty(t, up.ID)
	assert.Equal(t, formContentType, up.ContentType)
	assert.Equal(t, 2, up.Parts())
	assert.Equal(t, 2, up.Files)
	assert.EqualValues(t, len("Larry")+len("... contents of file1.txt ...")+len("GIF89a..."), up.Size)

	require.Len(t, up.Entries, 2)
	assert.Equal(t, models.KindPart, up.Entries[0].Kind)
	assert.Equal(t, "Larry", string(up.Entries[0].Body))

	nested := up.Entries[1]
	require.Equal(t, models.KindMultipart, nested.Kind)
	require.Len(t, nested.Children, 2)
	assert.Equal(t, "file1.txt", nested.Children[0].Filename)
	assert.EqualValues(t, 29, nested.Children[0].Size)
	file := nested.Children[1]
	assert.Equal(t, models.KindFile, nested.Children[0].Kind)
	assert.Equal(t, models.KindFile, file.Kind)
	assert.Equal(t, "file2.gif", file.Filename)
	assert.EqualValues(t, 9, file.Size)
	sum := sha256.Sum256([]byte("GIF89a..."))
	assert.Equal(t, hex.EncodeToString(sum[:]), file.Sha256)

	stored, err := os.ReadFile(filepath.Join(svc.UploadDir, up.ID, file.File))
	require.NoError(t, err)
	assert.Equal(t, "GIF89a...", string(stored))
	assert.FileExists(t, filepath.Join(svc.UploadDir, up.ID, completeMarker))

	saved, err := svc.Manifest(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, up.Entries, saved.Entries)
}

func TestAccept_RenderReproducesBody(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	up, err := svc.Accept(ctx, requestHeader(formContentType), strings.NewReader(formBody))
	require.NoError(t, err)

	rnd, err := svc.Render(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, "AaB03x", rnd.Boundary)
	assert.Equal(t, formContentType, rnd.ContentType)

	var out bytes.Buffer
	_, err = multipart.WriteMultipart(&out, rnd.Boundary, rnd.Nodes)
	require.NoError(t, err)
	// Исходное тело отличается только завершающим CRLF после внешнего терминатора.
	assert.Equal(t, strings.TrimSuffix(formBody, "\r\n"), out.String())
}

// jsonStore сериализует манифесты при каждом Save/Get, как это делает Postgres.
type jsonStore struct {
	*meta.MemoryStore
}

func (s jsonStore) Save(ctx context.Context, u models.Upload) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	var decoded models.Upload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	return s.MemoryStore.Save(ctx, decoded)
}

func TestAccept_RenderKeepsObsTextHeaders(t *testing.T) {
	svc := newTestService(t)
	svc.MetaStorage = jsonStore{MemoryStore: meta.NewMemoryStore()}
	ctx := context.Background()

	body := "--AaB03x\r\n" +
		"Content-Disposition: form-data; name=\"note\"\r\n" +
		"X-Note: caf\xe9\r\n" +
		"\r\n" +
		"text\r\n" +
		"--AaB03x--"

	up, err := svc.Accept(ctx, requestHeader(formContentType), strings.NewReader(body))
	require.NoError(t, err)

	rnd, err := svc.Render(ctx, up.ID)
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = multipart.WriteMultipart(&out, rnd.Boundary, rnd.Nodes)
	require.NoError(t, err)
	assert.Equal(t, body, out.String())
}

func TestAccept_AlwaysUseFiles(t *testing.T) {
	svc := newTestService(t)
	svc.AlwaysUseFiles = true

	up, err := svc.Accept(context.Background(), requestHeader(formContentType), strings.NewReader(formBody))
	require.NoError(t, err)
	assert.Equal(t, 3, up.Files)
	assert.Equal(t, models.KindFile, up.Entries[0].Kind)
}

func TestAccept_Failures(t *testing.T) {
	t.Run("empty upload", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.Accept(context.Background(), requestHeader(formContentType), strings.NewReader("--AaB03x--"))
		assert.ErrorIs(t, err, models.ErrEmptyUpload)
		assertNoUploads(t, svc)
	})

	t.Run("decode error", func(t *testing.T) {
		svc := newTestService(t)
		truncated := formBody[:strings.Index(formBody, "GIF89a")+3]
		_, err := svc.Accept(context.Background(), requestHeader(formContentType), strings.NewReader(truncated))
		assert.ErrorIs(t, err, multipart.ErrEOFInFile)
		assertNoUploads(t, svc)
	})

	t.Run("not multipart", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.Accept(context.Background(), requestHeader("text/plain"), strings.NewReader(formBody))
		assert.ErrorIs(t, err, multipart.ErrNotMultipart)
	})

	t.Run("canceled context", func(t *testing.T) {
		svc := newTestService(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.Accept(ctx, requestHeader(formContentType), strings.NewReader(formBody))
		assert.ErrorIs(t, err, context.Canceled)
		assertNoUploads(t, svc)
	})
}

func assertNoUploads(t *testing.T, svc *Uploads) {
	t.Helper()
	entries, err := os.ReadDir(svc.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Временные файлы парсера тоже удалены.
	tmp, err := os.ReadDir(os.TempDir())
	require.NoError(t, err)
	assert.Empty(t, tmp)
}

func TestRender_Incomplete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	up := models.Upload{ID: "half-written", ContentType: formContentType, CreatedAt: time.Now()}
	require.NoError(t, svc.MetaStorage.Save(ctx, up))
	require.NoError(t, os.MkdirAll(filepath.Join(svc.UploadDir, up.ID), 0o755))

	_, err := svc.Render(ctx, up.ID)
	assert.ErrorIs(t, err, models.ErrIncomplete)

	_, err = svc.Render(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	up, err := svc.Accept(ctx, requestHeader(formContentType), strings.NewReader(formBody))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, up.ID))
	assert.NoDirExists(t, filepath.Join(svc.UploadDir, up.ID))

	_, err = svc.Manifest(ctx, up.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, up.ID), models.ErrNotFound)
}

func TestList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Accept(ctx, requestHeader(formContentType), strings.NewReader(formBody))
	require.NoError(t, err)
	_, err = svc.Accept(ctx, requestHeader(formContentType), strings.NewReader(formBody))
	require.NoError(t, err)

	all, err := svc.List(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	old, err := svc.List(ctx, first.CreatedAt)
	require.NoError(t, err)
	assert.Empty(t, old)
}
