package multipart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

var crlf = []byte("\r\n")

// WriteMultipart пишет в w multipart-тело из nodes с границей boundary и возвращает
// число записанных байт. Заголовки верхнего уровня (content-type с этой же границей)
// вызывающий код отправляет сам до вызова.
func WriteMultipart(w io.Writer, boundary string, nodes []Node) (int64, error) {
	e := &plainEmitter{w: w}
	err := writeNodes(e, boundary, nodes)
	return e.n, err
}

// WriteMultipartChunked пишет то же тело, что и WriteMultipart, но каждый фрагмент
// (строка границы, строка заголовка, пустая строка, содержимое, терминатор)
// оформляется отдельным чанком Transfer-Encoding: chunked. В конце идёт нулевой чанк.
func WriteMultipartChunked(w io.Writer, boundary string, nodes []Node) error {
	if err := writeNodes(&chunkedEmitter{w: w}, boundary, nodes); err != nil {
		return err
	}
	return WriteChunk(w, nil)
}

// BodySize считает длину тела, которое запишет WriteMultipart, не читая файлы:
// их размер берётся из файловой системы. Нужна для Content-Length.
func BodySize(boundary string, nodes []Node) (int64, error) {
	e := &sizeEmitter{}
	if err := writeNodes(e, boundary, nodes); err != nil {
		return 0, err
	}
	return e.n, nil
}

// WriteChunk пишет один чанк: длина в hex, CRLF, данные, CRLF.
// Пустой chunk пишет завершающий нулевой чанк.
func WriteChunk(w io.Writer, chunk []byte) error {
	if _, err := io.WriteString(w, strconv.FormatInt(int64(len(chunk)), 16)+"\r\n"); err != nil {
		return ioErr("write", err)
	}
	if _, err := w.Write(chunk); err != nil {
		return ioErr("write", err)
	}
	if _, err := w.Write(crlf); err != nil {
		return ioErr("write", err)
	}
	return nil
}

// emitter абстрагирует кадрирование: обычное тело или чанки.
type emitter interface {
	fragment(p []byte) error
	file(path string) error
}

func writeNodes(e emitter, boundary string, nodes []Node) error {
	for _, node := range nodes {
		// Граница вложенного контейнера нужна до того, как что-либо записано.
		var nested string
		if m, ok := node.(*Multipart); ok {
			b, err := Boundary(m.Header)
			if err != nil {
				return err
			}
			nested = b
		}

		if err := e.fragment([]byte("--" + boundary + "\r\n")); err != nil {
			return err
		}

		switch n := node.(type) {
		case *Part:
			if err := writeHeader(e, n.Header); err != nil {
				return err
			}
			if err := e.fragment(n.Body); err != nil {
				return err
			}
		case *FilePart:
			if err := writeHeader(e, n.Header); err != nil {
				return err
			}
			if err := e.file(n.Path); err != nil {
				return err
			}
		case *Multipart:
			if err := writeHeader(e, n.Header); err != nil {
				return err
			}
			if err := writeNodes(e, nested, n.Nodes); err != nil {
				return err
			}
		default:
			return fmt.Errorf("multipart: unsupported node %T", node)
		}

		if err := e.fragment(crlf); err != nil {
			return err
		}
	}

	return e.fragment([]byte("--" + boundary + "--"))
}

// writeHeader пишет строки заголовка в порядке хранения и пустую строку после них.
func writeHeader(e emitter, h Header) error {
	for _, f := range h.fields {
		if err := e.fragment([]byte(f.Name + ": " + f.Value + "\r\n")); err != nil {
			return err
		}
	}
	return e.fragment(crlf)
}

type plainEmitter struct {
	w io.Writer
	n int64
}

func (e *plainEmitter) fragment(p []byte) error {
	n, err := e.w.Write(p)
	e.n += int64(n)
	if err != nil {
		return ioErr("write", err)
	}
	return nil
}

// file копирует файл кусками ограниченного размера, не читая его целиком.
func (e *plainEmitter) file(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ioErr("open file", err)
	}
	defer f.Close()

	n, err := io.Copy(e.w, f)
	e.n += n
	if err != nil {
		return ioErr("copy file", err)
	}
	return nil
}

type chunkedEmitter struct {
	w io.Writer
}

func (e *chunkedEmitter) fragment(p []byte) error {
	// Пустой чанк завершил бы поток раньше времени.
	if len(p) == 0 {
		return nil
	}
	return WriteChunk(e.w, p)
}

// file пишет файл одним чанком, длина которого берётся из размера на диске.
func (e *chunkedEmitter) file(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ioErr("open file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ioErr("stat file", err)
	}
	size := info.Size()
	if size == 0 {
		return nil
	}

	if _, err = io.WriteString(e.w, strconv.FormatInt(size, 16)+"\r\n"); err != nil {
		return ioErr("write", err)
	}
	if _, err = io.CopyN(e.w, f, size); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return ioErr("copy file", err)
	}
	if _, err = e.w.Write(crlf); err != nil {
		return ioErr("write", err)
	}
	return nil
}

type sizeEmitter struct {
	n int64
}

func (e *sizeEmitter) fragment(p []byte) error {
	e.n += int64(len(p))
	return nil
}

func (e *sizeEmitter) file(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return ioErr("stat file", err)
	}
	e.n += info.Size()
	return nil
}
