package multipart

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
)

// BoundaryLength: длина сгенерированной границы.
const BoundaryLength = 68

var boundaryReplacer = strings.NewReplacer("=", "-", "/", ".")

// GenerateBoundary возвращает случайную границу длиной BoundaryLength, которая
// со статистической точки зрения не встретится внутри содержимого частей.
func GenerateBoundary() string {
	// 51 байт дают ровно 68 символов base64 без паддинга.
	var buf [BoundaryLength / 4 * 3]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("multipart: crypto/rand failed: %v", err))
	}
	return boundaryReplacer.Replace(base64.StdEncoding.EncodeToString(buf[:]))
}

// ContentType формирует значение заголовка multipart/<subtype> с указанной границей.
func ContentType(subtype, boundary string) string {
	return mime.FormatMediaType("multipart/"+subtype, map[string]string{"boundary": boundary})
}

// Boundary извлекает параметр boundary из content-type заголовков h.
// Требуется тип верхнего уровня multipart.
func Boundary(h Header) (string, error) {
	v, ok, err := h.Text("content-type")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNoRequestContentType
	}

	mt, err := ParseMediaType(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHeaderValueNotMime, err)
	}
	if mt.Type != "multipart" {
		return "", fmt.Errorf("%w: %s", ErrNotMultipart, mt.Essence())
	}

	boundary, ok := mt.Params["boundary"]
	if !ok || boundary == "" {
		return "", ErrBoundaryNotSpecified
	}
	return boundary, nil
}

// delimiter: граница в том виде, в котором она стоит в теле: "--" + boundary.
func delimiter(boundary string) []byte {
	return []byte("--" + boundary)
}
