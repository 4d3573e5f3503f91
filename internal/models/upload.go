package models

import (
	"time"

	"github.com/sir_venger/multipart_lite/pkg/multipart"
)

// Виды записей манифеста, по одному на вариант multipart.Node.
const (
	KindPart      = "part"
	KindFile      = "file"
	KindMultipart = "multipart"
)

// Entry описывает одну часть загрузки; для контейнеров рекурсивно.
type Entry struct {
	Kind     string            `json:"kind"`
	Headers  []HeaderField `json:"headers"`
	Body     []byte        `json:"body,omitempty"`
	File     string        `json:"file,omitempty"`
	Filename string        `json:"filename,omitempty"`
	Sha256   string        `json:"sha256,omitempty"`
	Size     int64         `json:"size"`
	Children []Entry       `json:"children,omitempty"`
}

// HeaderField: строка заголовка части в манифесте. Значение хранится байтами,
// в JSON это base64: obs-text (0x80-0xFF) в JSON-строке не сохраняется.
type HeaderField struct {
	Name  string `json:"name"`
	Value []byte `json:"value"`
}

// FieldsOf переносит заголовок части в манифест без изменения байтов значений.
func FieldsOf(h multipart.Header) []HeaderField {
	fields := h.Fields()
	out := make([]HeaderField, len(fields))
	for i, f := range fields {
		out[i] = HeaderField{Name: f.Name, Value: []byte(f.Value)}
	}
	return out
}

// HeaderOf собирает заголовок части обратно из манифеста.
func HeaderOf(fields []HeaderField) multipart.Header {
	var h multipart.Header
	for _, f := range fields {
		h.Add(f.Name, string(f.Value))
	}
	return h
}

// Upload: манифест принятой multipart-загрузки.
type Upload struct {
	ID          string    `json:"upload_id"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
	Size        int64     `json:"size"`
	Files       int       `json:"files"`
	Entries     []Entry   `json:"entries"`
}

// Parts возвращает число частей верхнего уровня.
func (u Upload) Parts() int { return len(u.Entries) }

// Clone возвращает глубокую копию, чтобы не делиться срезами между хранилищем и вызывающим кодом.
func (u Upload) Clone() Upload {
	out := u
	out.Entries = cloneEntries(u.Entries)
	return out
}

func cloneEntries(in []Entry) []Entry {
	if in == nil {
		return nil
	}
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = e
		out[i].Headers = make([]HeaderField, len(e.Headers))
		for j, f := range e.Headers {
			out[i].Headers[j] = HeaderField{Name: f.Name, Value: append([]byte(nil), f.Value...)}
		}
		out[i].Body = append([]byte(nil), e.Body...)
		out[i].Children = cloneEntries(e.Children)
	}
	return out
}
