package multipart

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

var mainHeadersEnd = []byte("\r\n\r\n")

// ReadMultipart разбирает поток, в котором перед телом ещё стоят заголовки,
// завершённые пустой строкой CRLF. Дальше работает как ReadMultipartBody.
//
// Если alwaysUseFiles выставлен, все листовые части пишутся в файлы. Иначе в файлы
// уходят только части, у которых content-disposition содержит attachment или filename.
func ReadMultipart(r io.Reader, alwaysUseFiles bool) ([]Node, error) {
	br := bufio.NewReaderSize(r, readBufferSize)

	var buf bytes.Buffer
	_, found, err := scanUntil(br, mainHeadersEnd, &buf)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEOFInMainHeaders
	}
	buf.Write(mainHeadersEnd)

	h, err := ParseHeaders(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return readBody(br, h, alwaysUseFiles)
}

// ReadMultipartBody разбирает тело, заголовки которого уже известны, в дерево узлов.
// Разбор атомарный: при любой ошибке созданные файлы удаляются, узлы не возвращаются.
// Вызывающий код отвечает за CloseNodes над успешным результатом.
func ReadMultipartBody(r io.Reader, h Header, alwaysUseFiles bool) ([]Node, error) {
	return readBody(bufio.NewReaderSize(r, readBufferSize), h, alwaysUseFiles)
}

func readBody(r *bufio.Reader, h Header, alwaysUseFiles bool) (nodes []Node, err error) {
	p := &parser{
		r:              r,
		alwaysUseFiles: alwaysUseFiles,
	}
	defer func() {
		if err != nil {
			for _, fp := range p.created {
				_ = fp.Close()
			}
			nodes = nil
		}
	}()

	return p.container(h)
}

// parser держит состояние одного вызова: источник и список созданных файлов.
type parser struct {
	r              *bufio.Reader
	alwaysUseFiles bool
	created        []*FilePart
}

// container разбирает один multipart-контейнер с заголовками h до его
// закрывающей границы. Закрывающее "--" остаётся в потоке.
func (p *parser) container(h Header) ([]Node, error) {
	boundary, err := Boundary(h)
	if err != nil {
		return nil, err
	}
	delim := delimiter(boundary)
	p.fit(len(delim))

	_, found, err := scanUntil(p.r, delim, io.Discard)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEOFBeforeFirstBoundary
	}

	// Терминатор строки определяется один раз по байтам сразу за первой границей.
	peek, err := peekN(p.r, 2)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(peek, []byte("--")) {
		// Контейнер без частей.
		return nil, nil
	}
	var lt []byte
	switch {
	case bytes.HasPrefix(peek, []byte("\r\n")):
		lt = []byte("\r\n")
	case bytes.HasPrefix(peek, []byte("\n")):
		lt = []byte("\n")
	default:
		return nil, ErrNoCRLFAfterBoundary
	}
	ltlt := append(append([]byte{}, lt...), lt...)
	ltDelim := append(append([]byte{}, lt...), delim...)

	var nodes []Node
	for {
		peek, err = peekN(p.r, 2)
		if err != nil {
			return nil, err
		}
		if bytes.Equal(peek, []byte("--")) {
			return nodes, nil
		}

		_, found, err = scanUntil(p.r, lt, io.Discard)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrNoCRLFAfterBoundary
		}

		partHeader, err := p.partHeader(lt, ltlt)
		if err != nil {
			return nil, err
		}

		nested, err := isNested(partHeader)
		if err != nil {
			return nil, err
		}
		if nested {
			children, err := p.container(partHeader)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &Multipart{Header: partHeader, Nodes: children})
			if err = p.skipEpilogue(ltDelim); err != nil {
				return nil, err
			}
			continue
		}

		isFile, err := p.isFile(partHeader)
		if err != nil {
			return nil, err
		}
		if isFile {
			fp, err := p.streamFile(partHeader, ltDelim)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, fp)
			continue
		}

		var body bytes.Buffer
		_, found, err = scanUntil(p.r, ltDelim, &body)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrEOFInPart
		}
		nodes = append(nodes, &Part{Header: partHeader, Body: body.Bytes()})
	}
}

// fit расширяет буфер источника под самый длинный токен контейнера: перевод
// строки, "--" и граница, плюс запас. Уже буферизованные байты не теряются,
// новый reader читает их через старый.
func (p *parser) fit(delimLen int) {
	need := delimLen + 2 + readBufferSize
	if p.r.Size() > delimLen+2 {
		return
	}
	p.r = bufio.NewReaderSize(p.r, need)
}

// partHeader читает блок заголовков части. Пустой блок (сразу пустая строка)
// допустим и даёт пустую коллекцию.
func (p *parser) partHeader(lt, ltlt []byte) (Header, error) {
	peek, err := peekN(p.r, len(lt))
	if err != nil {
		return Header{}, err
	}
	if bytes.Equal(peek, lt) {
		_, _ = p.r.Discard(len(lt))
		return Header{}, nil
	}

	var buf bytes.Buffer
	_, found, err := scanUntil(p.r, ltlt, &buf)
	if err != nil {
		return Header{}, err
	}
	if !found {
		return Header{}, ErrEOFInPartHeaders
	}
	buf.Write(ltlt)

	return ParseHeaders(buf.Bytes())
}

// skipEpilogue вычитывает закрывающее "--" вложенного контейнера и всё после него
// вплоть до следующей границы объемлющего контейнера.
func (p *parser) skipEpilogue(ltDelim []byte) error {
	if _, err := p.r.Discard(2); err != nil {
		return ioErr("read", err)
	}
	_, found, err := scanUntil(p.r, ltDelim, io.Discard)
	if err != nil {
		return err
	}
	if !found {
		return ErrEOFInPart
	}
	return nil
}

// streamFile пишет содержимое части прямо в новый временный файл, не держа его в памяти.
func (p *parser) streamFile(h Header, ltDelim []byte) (*FilePart, error) {
	fp, err := CreateFilePart(h)
	if err != nil {
		return nil, err
	}
	p.created = append(p.created, fp)

	f, err := os.OpenFile(fp.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, ioErr("create file", err)
	}

	n, found, err := scanUntil(p.r, ltDelim, f)
	closeErr := f.Close()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrEOFInFile
	}
	if closeErr != nil {
		return nil, ioErr("close file", closeErr)
	}

	fp.Size = n
	return fp, nil
}

func (p *parser) isFile(h Header) (bool, error) {
	if p.alwaysUseFiles {
		return true, nil
	}
	v, ok, err := h.Text("content-disposition")
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return strings.Contains(v, "attachment") || strings.Contains(v, "filename"), nil
}

// isNested проверяет, является ли часть вложенным multipart-контейнером.
// Здесь тип обязан разбираться: от него зависит структура дерева.
func isNested(h Header) (bool, error) {
	v, ok, err := h.Text("content-type")
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	mt, err := ParseMediaType(v)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrHeaderValueNotMime, err)
	}
	return mt.Type == "multipart", nil
}
