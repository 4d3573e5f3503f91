package uploadclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// UploadResult: сводка, которую сервер возвращает на POST /uploads.
type UploadResult struct {
	UploadID string `json:"upload_id"`
	Size     int64  `json:"size"`
	Files    int    `json:"files"`
	Parts    int    `json:"parts"`
}

// FetchOptions управляет скачиванием загрузки.
type FetchOptions struct {
	// Chunked просит сервер кадрировать ответ Transfer-Encoding: chunked.
	Chunked bool
	// AlwaysUseFiles сохраняет все листовые части во временные файлы.
	AlwaysUseFiles bool
}

type Client interface {
	// Upload Отправить дерево узлов одной multipart/form-data загрузкой
	Upload(ctx context.Context, baseURL string, nodes []multipart.Node) (UploadResult, error)
	// Fetch Скачать загрузку и разобрать её обратно в дерево узлов
	Fetch(ctx context.Context, baseURL, id string, opts FetchOptions) ([]multipart.Node, error)
}

type httpClient struct {
	c        *http.Client
	progress io.Writer
}

type Option func(*httpClient)

// WithHTTPClient подменяет транспорт, например клиентом httptest.
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.c = c }
}

// WithProgress включает ASCII-индикатор выполнения в out.
func WithProgress(out io.Writer) Option {
	return func(h *httpClient) { h.progress = out }
}

// New создаёт HTTP-клиент по умолчанию.
func New(opts ...Option) Client {
	h := &httpClient{c: &http.Client{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Upload пишет тело в трубу в отдельной горутине, пока запрос читает её с другого конца.
// Длина тела считается заранее, поэтому запрос уходит с Content-Length.
func (h *httpClient) Upload(ctx context.Context, baseURL string, nodes []multipart.Node) (UploadResult, error) {
	boundary := multipart.GenerateBoundary()
	size, err := multipart.BodySize(boundary, nodes)
	if err != nil {
		return UploadResult{}, err
	}

	bar := newProgressBar(h.progress, "Uploading", size)
	pr, pw := io.Pipe()
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		_, err := multipart.WriteMultipart(io.MultiWriter(pw, progressWriter{bar: bar}), boundary, nodes)
		_ = pw.CloseWithError(err)
		// Закрытую трубу видит и запрос: его ошибка информативнее.
		if errors.Is(err, io.ErrClosedPipe) {
			return nil
		}
		return err
	})

	var res UploadResult
	eg.Go(func() error {
		// Если сервер ответил, не дочитав тело, писатель не должен остаться заблокированным.
		defer pr.Close()

		req, err := http.NewRequestWithContext(egCtx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/uploads", pr)
		if err != nil {
			_ = pr.CloseWithError(err)
			return err
		}
		req.ContentLength = size
		req.Header.Set("Content-Type", multipart.ContentType("form-data", boundary))

		resp, err := h.c.Do(req)
		if err != nil {
			_ = pr.CloseWithError(err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			return responseError("upload", resp)
		}
		return json.NewDecoder(resp.Body).Decode(&res)
	})

	if err := eg.Wait(); err != nil {
		bar.Fail(err)
		return UploadResult{}, err
	}
	bar.Finish()

	return res, nil
}

// Fetch скачивает загрузку и разбирает ответ по его Content-Type.
// Вызывающий код отвечает за multipart.CloseNodes над результатом.
func (h *httpClient) Fetch(ctx context.Context, baseURL, id string, opts FetchOptions) ([]multipart.Node, error) {
	u := strings.TrimRight(baseURL, "/") + "/uploads/" + url.PathEscape(id)
	if opts.Chunked {
		u += "?transfer=chunked"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError("fetch", resp)
	}

	bar := newProgressBar(h.progress, "Downloading "+id, resp.ContentLength)
	nodes, err := multipart.ReadMultipartBody(progressReader{inner: resp.Body, bar: bar}, multipart.HeaderFromHTTP(resp.Header), opts.AlwaysUseFiles)
	if err != nil {
		bar.Fail(err)
		return nil, err
	}
	bar.Finish()

	return nodes, nil
}

func responseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	return fmt.Errorf("%s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(body)))
}
