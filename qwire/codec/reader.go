package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/cryptobyte"
)

var (
	ErrUnderflow     = errors.New("codec: read past end of buffer")
	ErrInvalidLength = errors.New("codec: invalid length prefix")
)

// UnderflowError reports a read that asked for more bytes than remain.
// It matches both ErrUnderflow and io.ErrUnexpectedEOF.
type UnderflowError struct {
	Need int
	Have int
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("%s: need %d bytes, have %d", ErrUnderflow, e.Need, e.Have)
}

func (e *UnderflowError) Is(target error) bool {
	return target == ErrUnderflow || target == io.ErrUnexpectedEOF
}

// Reader is a cursor over an input buffer. A failed read consumes nothing.
type Reader struct {
	s cryptobyte.String
}

func NewReader(data []byte) *Reader {
	return &Reader{s: cryptobyte.String(data)}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.s) }

func (r *Reader) underflow(n int) error {
	return &UnderflowError{Need: n, Have: len(r.s)}
}

// ReadData decodes v in its normal form.
func (r *Reader) ReadData(v Decodable) error {
	return v.Decode(r)
}

// ReadShort decodes v in its short form, falling back to the normal form.
func (r *Reader) ReadShort(v Decodable) error {
	if s, ok := v.(ShortDecodable); ok {
		return s.DecodeShort(r)
	}
	return v.Decode(r)
}

// ReadSized decodes v from exactly n bytes when v supports an external size,
// otherwise it falls back to the normal form.
func (r *Reader) ReadSized(v Decodable, n int) error {
	if s, ok := v.(SizedDecodable); ok {
		return s.DecodeSized(r, n)
	}
	return v.Decode(r)
}

func (r *Reader) ReadUint8() (uint8, error) {
	var v uint8
	if !r.s.ReadUint8(&v) {
		return 0, r.underflow(1)
	}
	return v, nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	var v uint16
	if !r.s.ReadUint16(&v) {
		return 0, r.underflow(2)
	}
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	var v uint32
	if !r.s.ReadUint32(&v) {
		return 0, r.underflow(4)
	}
	return v, nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	var v uint64
	if !r.s.ReadUint64(&v) {
		return 0, r.underflow(8)
	}
	return v, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// ReadBytes reads exactly n bytes. The result is a copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	var v []byte
	if !r.s.ReadBytes(&v, n) {
		return nil, r.underflow(n)
	}
	return append([]byte{}, v...), nil
}

// ReadShortBytes reads a u16 length followed by that many bytes.
// Nothing is consumed if the payload is truncated.
func (r *Reader) ReadShortBytes() ([]byte, error) {
	var v cryptobyte.String
	s := r.s
	if !s.ReadUint16LengthPrefixed(&v) {
		return nil, r.shortUnderflow()
	}
	r.s = s
	return append([]byte{}, v...), nil
}

func (r *Reader) shortUnderflow() error {
	if len(r.s) < 2 {
		return r.underflow(2)
	}
	n := int(binary.BigEndian.Uint16(r.s))
	return r.underflow(2 + n)
}

// ReadString reads a normal-form string: a u32 length that includes its own
// 4 bytes, then the payload.
func (r *Reader) ReadString() (string, error) {
	if len(r.s) < 4 {
		return "", r.underflow(4)
	}
	size := uint64(binary.BigEndian.Uint32(r.s))
	if size < 4 {
		return "", fmt.Errorf("%w: string prefix %d", ErrInvalidLength, size)
	}
	if uint64(len(r.s)) < size {
		return "", &UnderflowError{Need: int(size), Have: len(r.s)}
	}
	r.s.Skip(4)
	b, err := r.ReadBytes(int(size - 4))
	if err != nil {
		return "", err
	}
	return lossyString(b), nil
}

// ReadShortString reads a u16 length followed by the payload.
func (r *Reader) ReadShortString() (string, error) {
	b, err := r.ReadShortBytes()
	if err != nil {
		return "", err
	}
	return lossyString(b), nil
}

// ReadAvailable drains and returns every unread byte.
func (r *Reader) ReadAvailable() []byte {
	out := append([]byte{}, r.s...)
	r.s = r.s[len(r.s):]
	return out
}
