package multipart

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const tempDirPrefix = "mime_multipart"

// FilePart: часть, содержимое которой лежит на диске.
//
// Экземпляр из CreateFilePart владеет временным файлом и каталогом: Close удаляет
// сначала файл, потом каталог. Экземпляр из NewFilePart ничем не владеет и Close
// для него ничего не делает. От владения можно отказаться через ReleaseOwnership,
// вернуть его нельзя.
type FilePart struct {
	Header Header
	Path   string
	// Size: число байт содержимого; -1, если часть собрана вызывающим кодом
	// и размер не измерялся.
	Size int64

	tempDir string
}

// NewFilePart оборачивает существующий файл без передачи владения.
func NewFilePart(h Header, path string) *FilePart {
	return &FilePart{
		Header: h,
		Path:   path,
		Size:   -1,
	}
}

// CreateFilePart создаёт новый временный каталог и случайное имя файла внутри него.
// Сам файл не создаётся: его открывает тот, кто будет писать содержимое.
func CreateFilePart(h Header) (*FilePart, error) {
	dir, err := os.MkdirTemp("", tempDirPrefix)
	if err != nil {
		return nil, ioErr("create temp dir", err)
	}

	return &FilePart{
		Header:  h,
		Path:    filepath.Join(dir, uuid.NewString()),
		Size:    -1,
		tempDir: dir,
	}, nil
}

// Owned сообщает, удалит ли Close файл с диска.
func (f *FilePart) Owned() bool { return f.tempDir != "" }

// ReleaseOwnership передаёт ответственность за файл и каталог вызывающему коду.
func (f *FilePart) ReleaseOwnership() {
	f.tempDir = ""
}

// TempDir: каталог, который будет удалён вместе с файлом; пусто, если владения нет.
func (f *FilePart) TempDir() string { return f.tempDir }

// Close удаляет принадлежащий файл и его каталог. Ошибки удаления игнорируются:
// файла к этому моменту может уже не быть. Повторный вызов ничего не делает.
func (f *FilePart) Close() error {
	if f.tempDir == "" {
		return nil
	}
	_ = os.Remove(f.Path)
	_ = os.Remove(f.tempDir)
	f.tempDir = ""
	return nil
}

// ContentType: тип содержимого файла, если он указан и разбирается.
func (f *FilePart) ContentType() (MediaType, bool) {
	return contentTypeOf(f.Header)
}

func (f *FilePart) Name() string { return dispositionName(f.Header) }

// Filename: имя загруженного файла из content-disposition: сначала параметр
// filename=, затем расширенная форма filename*=UTF-8''. ok == false, если имени нет.
func (f *FilePart) Filename() (string, bool, error) {
	v, ok, err := f.Header.Text("content-disposition")
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return dispositionFilename(v)
}

const extendedFilenameUTF8 = "filename*=utf-8''"

func dispositionFilename(v string) (string, bool, error) {
	lower := strings.ToLower(v)
	if !strings.Contains(lower, "filename") {
		return "", false, nil
	}

	if i := strings.Index(lower, "filename="); i >= 0 {
		return paramValue(v[i+len("filename="):]), true, nil
	}

	if i := strings.Index(lower, extendedFilenameUTF8); i >= 0 {
		raw := paramValue(v[i+len(extendedFilenameUTF8):])
		name, err := url.PathUnescape(raw)
		if err != nil {
			return "", false, fmt.Errorf("%w: filename: %v", ErrUTF8, err)
		}
		if !utf8.ValidString(name) {
			return "", false, fmt.Errorf("%w: filename %q", ErrUTF8, raw)
		}
		return name, true, nil
	}

	return "", false, nil
}

// paramValue вырезает значение параметра: строку в кавычках либо всё до ';'.
func paramValue(s string) string {
	s = strings.TrimLeft(s, " \t")
	if strings.HasPrefix(s, `"`) {
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			switch c := s[i]; c {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				return b.String()
			default:
				b.WriteByte(c)
			}
		}
		return b.String()
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(strings.TrimSpace(s), `"`)
}
