package integration

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func Test_UploadGC_RemovesStaleDirs(t *testing.T) {
	rest, cfg := newRestServer(t)

	// полу-загрузка: каталог без маркера завершения
	stale := filepath.Join(cfg.UploadDir, "stale-upload")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(stale, "1"), []byte("partial"), 0o600)
	// старим модтайм
	old := time.Now().Add(-48 * time.Hour)
	_ = os.Chtimes(stale, old, old)

	up, _, err := postUpload(rest.URL, formContentType, formBody)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(rest.URL+"/admin/gc", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var res struct {
		Removed int `json:"removed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Removed != 1 {
		t.Fatalf("removed %d dirs, want 1", res.Removed)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale dir not removed")
	}
	if _, err := os.Stat(filepath.Join(cfg.UploadDir, up.UploadID)); err != nil {
		t.Fatalf("complete upload removed: %v", err)
	}
}
