package codec

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/crypto/cryptobyte"

	"github.com/TheusHen/qwire/qwire/crypto/tea"
)

var ErrTooLong = errors.New("codec: payload too long for its length prefix")

// Writer is an append-only output buffer.
//
// Errors that are not tied to a single call, such as a short-form payload
// longer than 65535 bytes, are sticky: the first one is kept, later writes
// are dropped, and Bytes reports it.
type Writer struct {
	b   *cryptobyte.Builder
	err error
}

func NewWriter() *Writer {
	return &Writer{b: cryptobyte.NewBuilder(make([]byte, 0, 64))}
}

// NewFilled runs fill against a fresh Writer and returns the result.
func NewFilled(fill func(w *Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := fill(w); err != nil {
		return nil, err
	}
	return w.Bytes()
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first sticky error, if any.
func (w *Writer) Err() error { return w.err }

// Bytes returns everything written so far.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.b.Bytes()
}

// Len returns the number of bytes written so far, or 0 after an error.
func (w *Writer) Len() int {
	b, err := w.Bytes()
	if err != nil {
		return 0
	}
	return len(b)
}

// WriteData writes v in its normal form.
func (w *Writer) WriteData(v Encodable) {
	v.Encode(w)
}

// WriteShort writes v in its short form, falling back to the normal form.
func (w *Writer) WriteShort(v Encodable) {
	if s, ok := v.(ShortEncodable); ok {
		s.EncodeShort(w)
		return
	}
	v.Encode(w)
}

func (w *Writer) WriteUint8(v uint8) {
	if w.err == nil {
		w.b.AddUint8(v)
	}
}

func (w *Writer) WriteUint16(v uint16) {
	if w.err == nil {
		w.b.AddUint16(v)
	}
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err == nil {
		w.b.AddUint32(v)
	}
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err == nil {
		w.b.AddUint64(v)
	}
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteBytes appends b with no prefix.
func (w *Writer) WriteBytes(b []byte) {
	if w.err == nil {
		w.b.AddBytes(b)
	}
}

// WriteShortBytes appends a u16 length and b.
func (w *Writer) WriteShortBytes(b []byte) {
	if len(b) > math.MaxUint16 {
		w.fail(fmt.Errorf("%w: %d bytes behind a u16 prefix", ErrTooLong, len(b)))
		return
	}
	w.WriteUint16(uint16(len(b)))
	w.WriteBytes(b)
}

// WriteString appends a u32 length (payload length + 4) and the payload.
func (w *Writer) WriteString(s string) {
	if uint64(len(s))+4 > math.MaxUint32 {
		w.fail(fmt.Errorf("%w: %d bytes behind a u32 prefix", ErrTooLong, len(s)))
		return
	}
	w.WriteUint32(uint32(len(s) + 4))
	w.WriteBytes([]byte(s))
}

// WriteShortString appends a u16 length and the payload.
func (w *Writer) WriteShortString(s string) {
	w.WriteShortBytes([]byte(s))
}

// WriteInTLVPackage builds a sub-structure on a temporary Writer and appends
// it behind a u32 length of len(sub)+offset.
func (w *Writer) WriteInTLVPackage(offset int, build func(w *Writer)) {
	sub := NewWriter()
	build(sub)
	b, err := sub.Bytes()
	if err != nil {
		w.fail(err)
		return
	}
	total := uint64(len(b)) + uint64(offset)
	if offset < 0 || total > math.MaxUint32 {
		w.fail(fmt.Errorf("%w: package of %d bytes with offset %d", ErrTooLong, len(b), offset))
		return
	}
	w.WriteUint32(uint32(total))
	w.WriteBytes(b)
}

// WriteInUniPackage writes the standard outer envelope: a head block with the
// command name, session id and extra data, followed by the body. Both blocks
// carry a u32 length that counts its own 4 bytes.
func (w *Writer) WriteInUniPackage(commandName string, sessionID, extraData, body []byte) {
	w.WriteInTLVPackage(4, func(w *Writer) {
		w.WriteString(commandName)
		w.WriteUint32(8)
		w.WriteShortBytes(sessionID)
		if len(extraData) == 0 {
			w.WriteUint32(4)
		} else {
			w.WriteUint32(uint32(len(extraData) + 4))
			w.WriteBytes(extraData)
		}
	})
	w.WriteInTLVPackage(4, func(w *Writer) {
		w.WriteBytes(body)
	})
}

// WriteTLVLimitedSize writes data in short form, truncated to limit bytes.
func (w *Writer) WriteTLVLimitedSize(data []byte, limit int) {
	if limit >= 0 && len(data) > limit {
		data = data[:limit]
	}
	w.WriteShortBytes(data)
}

// EncryptedWrite appends the TEA ciphertext of data under key, unprefixed.
// A key shorter than 16 bytes yields an error matching tea.ErrKeySize and
// leaves the Writer untouched.
func (w *Writer) EncryptedWrite(key, data []byte) error {
	ct, err := tea.Encrypt(key, data)
	if err != nil {
		return err
	}
	w.WriteBytes(ct)
	return nil
}
