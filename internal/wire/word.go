package wire

import (
	"io"

	"github.com/nimda/gorouteros/internal/rerr"
)

// WriteWord writes a single length-prefixed word.
func WriteWord(w io.Writer, word []byte) error {
	prefix, err := EncodeLength(len(word))
	if err != nil {
		return err
	}
	if _, err := w.Write(prefix); err != nil {
		return rerr.Wrap(classifyIOErr(err), "writing word length", err)
	}
	if len(word) == 0 {
		return nil
	}
	if _, err := w.Write(word); err != nil {
		return rerr.Wrap(classifyIOErr(err), "writing word", err)
	}
	return nil
}

// ReadWord reads a single word. A zero-length word is the end-of-sentence
// sentinel, reported via end=true with a nil word.
func ReadWord(r io.Reader) (word []byte, end bool, err error) {
	length, err := DecodeLength(r)
	if err != nil {
		return nil, false, err
	}
	if length == 0 {
		return nil, true, nil
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, false, rerr.Wrap(rerr.KindProtocol, "truncated word", err)
		}
		return nil, false, rerr.Wrap(classifyIOErr(err), "reading word", err)
	}
	return buf, false, nil
}
