package multipart

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

const readBufferSize = 4096

// scanUntil читает r до первого вхождения token, переписывая всё пропущенное в sink.
// Сам token из r вычитывается, но в sink не попадает. Хвост буфера, который может
// оказаться началом token, остаётся в r до следующего чтения, поэтому token может
// прийти двумя разными Read. Возвращает число записанных в sink байт и признак находки;
// исчерпание источника без находки ошибкой не считается.
// Буфер r должен быть строго длиннее token, иначе token не поместится в Peek.
func scanUntil(r *bufio.Reader, token []byte, sink io.Writer) (int64, bool, error) {
	var written int64
	if len(token) >= r.Size() {
		return 0, false, ioErr("read", bufio.ErrBufferFull)
	}

	flush := func(p []byte) error {
		if len(p) == 0 {
			return nil
		}
		n, err := sink.Write(p)
		written += int64(n)
		if err != nil {
			return ioErr("write", err)
		}
		if n != len(p) {
			return ioErr("write", io.ErrShortWrite)
		}
		_, err = r.Discard(len(p))
		return err
	}

	want := 1
	for {
		buf, err := r.Peek(want)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return written, false, ioErr("read", err)
		}
		eof := errors.Is(err, io.EOF)
		if len(buf) < r.Buffered() {
			buf, _ = r.Peek(r.Buffered())
		}

		if i := bytes.Index(buf, token); i >= 0 {
			if ferr := flush(buf[:i]); ferr != nil {
				return written, false, ferr
			}
			if _, derr := r.Discard(len(token)); derr != nil {
				return written, false, ioErr("read", derr)
			}
			return written, true, nil
		}

		if eof {
			if ferr := flush(buf); ferr != nil {
				return written, false, ferr
			}
			return written, false, nil
		}

		keep := partialSuffix(buf, token)
		if ferr := flush(buf[:len(buf)-keep]); ferr != nil {
			return written, false, ferr
		}
		// В буфере остался только возможный префикс token: просим ещё хотя бы байт.
		want = keep + 1
	}
}

// partialSuffix возвращает длину самого длинного суффикса buf, который является
// собственным префиксом token.
func partialSuffix(buf, token []byte) int {
	n := len(token) - 1
	if n > len(buf) {
		n = len(buf)
	}
	for ; n > 0; n-- {
		if bytes.HasPrefix(token, buf[len(buf)-n:]) {
			return n
		}
	}
	return 0
}

// peekN отдаёт до n байт из r без их вычитывания; нехватка данных ошибкой не считается.
func peekN(r *bufio.Reader, n int) ([]byte, error) {
	buf, err := r.Peek(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return buf, ioErr("read", err)
	}
	return buf, nil
}
