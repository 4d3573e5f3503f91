package multipart

import (
	"errors"
	"fmt"
)

// Ошибки разбора multipart-тела. Каждая соответствует ровно одному условию,
// поэтому вызывающий код различает их через errors.Is.
var (
	ErrNoRequestContentType     = errors.New("multipart: no content-type header")
	ErrNotMultipart             = errors.New("multipart: content-type is not multipart/*")
	ErrBoundaryNotSpecified     = errors.New("multipart: boundary parameter not specified")
	ErrPartialHeaders           = errors.New("multipart: partial header block")
	ErrEOFInMainHeaders         = errors.New("multipart: eof in main headers")
	ErrEOFBeforeFirstBoundary   = errors.New("multipart: eof before first boundary")
	ErrNoCRLFAfterBoundary      = errors.New("multipart: no line terminator after boundary")
	ErrEOFInPartHeaders         = errors.New("multipart: eof in part headers")
	ErrEOFInFile                = errors.New("multipart: eof in file")
	ErrEOFInPart                = errors.New("multipart: eof in part")
	ErrInvalidHeaderNameOrValue = errors.New("multipart: invalid header name or value")
	ErrHeaderValueNotMime       = errors.New("multipart: header value is not a mime type")
	ErrHeaderToStr              = errors.New("multipart: header value is not text")
	ErrUTF8                     = errors.New("multipart: invalid utf-8")
)

var decodeErrors = []error{
	ErrNoRequestContentType,
	ErrNotMultipart,
	ErrBoundaryNotSpecified,
	ErrPartialHeaders,
	ErrEOFInMainHeaders,
	ErrEOFBeforeFirstBoundary,
	ErrNoCRLFAfterBoundary,
	ErrEOFInPartHeaders,
	ErrEOFInFile,
	ErrEOFInPart,
	ErrInvalidHeaderNameOrValue,
	ErrHeaderValueNotMime,
	ErrHeaderToStr,
	ErrUTF8,
}

// IOError оборачивает ошибку источника или приёмника данных, сохраняя исходную причину.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("multipart: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func ioErr(op string, err error) error {
	var ie *IOError
	if errors.As(err, &ie) {
		return err
	}
	return &IOError{Op: op, Err: err}
}

// IsDecodeError сообщает, вызвана ли ошибка некорректным входом, а не окружением.
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range decodeErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
