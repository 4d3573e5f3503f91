package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sir_venger/multipart_lite/internal/app/resthttp"
	"github.com/sir_venger/multipart_lite/internal/config"
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
	"\r\n" +
	"... contents of file1.txt ...\r\n" +
	"--BbC04y\r\n" +
	"Content-Disposition: file; filename=\"awesome_image.gif\"\r\n" +
	"Content-Type: image/gif\r\n" +
	"Content-Transfer-Encoding: binary\r\n" +
	"\r\n" +
	"... contents of awesome_image.gif ...\r\n" +
	"--BbC04y--\r\n" +
	"--AaB03x--"

const formContentType = "multipart/form-data; boundary=AaB03x"

type uploadResponse struct {
	UploadID string `json:"upload_id"`
	Size     int64  `json:"size"`
	Files    int    `json:"files"`
	Parts    int    `json:"parts"`
}

// newRestServer поднимает REST-сервис с манифестами в памяти.
func newRestServer(t *testing.T) (*httptest.Server, *config.Config) {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())

	cfg := &config.Config{
		ListenAddr: ":0",
		MetaDSN:    "memory://",
		UploadDir:  t.TempDir(),
		GCTTL:      time.Hour,
	}
	handler, srv, err := resthttp.NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("new rest server: %v", err)
	}
	rest := httptest.NewServer(handler)
	t.Cleanup(func() { rest.Close(); srv.Close() })

	return rest, cfg
}

func postUpload(url, contentType, body string) (uploadResponse, int, error) {
	resp, err := http.Post(url+"/uploads", contentType, bytes.NewBufferString(body))
	if err != nil {
		return uploadResponse{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return uploadResponse{}, resp.StatusCode, nil
	}

	var res uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return uploadResponse{}, resp.StatusCode, err
	}
	return res, resp.StatusCode, nil
}

func get(url string) (*http.Response, []byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	return resp, body, nil
}

func doRequest(method, url string) (int, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return 0, fmt.Errorf("drain body: %w", err)
	}
	return resp.StatusCode, nil
}
