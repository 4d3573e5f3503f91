package multipart

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Field: одна строка заголовка в том виде, в котором она пришла или будет записана.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Header: упорядоченный мультимап заголовков. Поиск по имени не зависит от регистра,
// дубликаты сохраняются, порядок обхода совпадает с порядком добавления.
// Нулевое значение готово к использованию.
type Header struct {
	fields []Field
}

// NewHeader собирает коллекцию из пар имя/значение.
func NewHeader(fields ...Field) Header {
	var h Header
	for _, f := range fields {
		h.Add(f.Name, f.Value)
	}
	return h
}

// Add добавляет значение в конец коллекции, не трогая существующие.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Set заменяет все значения name одним, сохраняя позицию первого вхождения.
func (h *Header) Set(name, value string) {
	for i, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			h.fields[i] = Field{Name: name, Value: value}
			h.fields = append(h.fields[:i+1], deleteField(h.fields[i+1:], name)...)
			return
		}
	}
	h.Add(name, value)
}

// Del удаляет все значения name.
func (h *Header) Del(name string) {
	h.fields = deleteField(h.fields, name)
}

func deleteField(fields []Field, name string) []Field {
	out := fields[:0]
	for _, f := range fields {
		if !strings.EqualFold(f.Name, name) {
			out = append(out, f)
		}
	}
	return out
}

// Get возвращает первое значение name.
func (h Header) Get(name string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Has сообщает, есть ли хотя бы одно значение name.
func (h Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Values возвращает все значения name в порядке добавления.
func (h Header) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Text возвращает первое значение name как текст. Значения с байтами вне
// видимого ASCII (кроме HTAB) текстом не считаются.
func (h Header) Text(name string) (string, bool, error) {
	v, ok := h.Get(name)
	if !ok {
		return "", false, nil
	}
	if !isText(v) {
		return "", true, fmt.Errorf("%w: %s", ErrHeaderToStr, name)
	}
	return v, true, nil
}

// Fields возвращает копию строк заголовка в порядке хранения.
func (h Header) Fields() []Field {
	return append([]Field(nil), h.fields...)
}

func (h Header) Len() int { return len(h.fields) }

func (h Header) Clone() Header {
	return Header{fields: h.Fields()}
}

func isText(v string) bool {
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\t' {
			continue
		}
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

type rawField struct {
	name  []byte
	value []byte
}

// ParseHeaders разбирает блок заголовков, который уже заканчивается пустой строкой
// (CRLF или LF). Пустое значение прекращает разбор блока на этом заголовке.
func ParseHeaders(raw []byte) (Header, error) {
	raws, err := tokenizeHeaders(raw)
	if err != nil {
		return Header{}, err
	}

	var h Header
	for _, rf := range raws {
		if len(rf.value) == 0 {
			break
		}
		value := bytes.TrimRight(rf.value, " ")
		name := string(rf.name)
		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(string(value)) {
			return Header{}, fmt.Errorf("%w: %q", ErrInvalidHeaderNameOrValue, name)
		}
		h.Add(name, string(value))
	}

	return h, nil
}

// tokenizeHeaders режет блок на пары имя/значение и проверяет, что блок завершён.
func tokenizeHeaders(raw []byte) ([]rawField, error) {
	var out []rawField
	rest := raw
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			return nil, ErrPartialHeaders
		}
		line := bytes.TrimSuffix(rest[:i], []byte{'\r'})
		rest = rest[i+1:]

		if len(line) == 0 {
			return out, nil
		}

		name, value, ok := bytes.Cut(line, []byte{':'})
		if !ok || len(name) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeaderNameOrValue, line)
		}
		out = append(out, rawField{
			name:  name,
			value: bytes.TrimLeft(value, " \t"),
		})
	}
}

// HeaderFromHTTP переносит заголовки net/http в Header. Порядок в http.Header
// не сохраняется, поэтому имена сортируются; значения одного имени идут как пришли.
func HeaderFromHTTP(src http.Header) Header {
	names := make([]string, 0, len(src))
	for name := range src {
		names = append(names, name)
	}
	sort.Strings(names)

	var h Header
	for _, name := range names {
		for _, v := range src[name] {
			h.Add(name, v)
		}
	}
	return h
}
