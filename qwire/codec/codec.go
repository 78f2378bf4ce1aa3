package codec

import (
	"strings"
	"unicode/utf8"
)

// Encodable writes its normal form to a Writer.
type Encodable interface {
	Encode(w *Writer)
}

// ShortEncodable is implemented by values whose short form differs from the
// normal form. The short form is a u16 payload length followed by the payload.
type ShortEncodable interface {
	Encodable
	EncodeShort(w *Writer)
}

// Decodable reads its normal form from a Reader.
type Decodable interface {
	Decode(r *Reader) error
}

// ShortDecodable is the reading counterpart of ShortEncodable.
type ShortDecodable interface {
	Decodable
	DecodeShort(r *Reader) error
}

// SizedDecodable is implemented by blob types whose length comes from an
// enclosing structure, such as a TLV length field.
type SizedDecodable interface {
	Decodable
	DecodeSized(r *Reader, n int) error
}

type (
	U8   uint8
	U16  uint16
	U32  uint32
	U64  uint64
	I32  int32
	I64  int64
	Bool bool
)

// String is a UTF-8 string. Its normal form carries a u32 length that counts
// the 4 prefix bytes; its short form carries a plain u16 payload length.
type String string

// Bytes is an opaque blob. The normal form is the raw bytes with no prefix.
// Decoding the normal form reads the short form, since a raw blob does not
// describe its own length.
type Bytes []byte

func (v U8) Encode(w *Writer)   { w.WriteUint8(uint8(v)) }
func (v U16) Encode(w *Writer)  { w.WriteUint16(uint16(v)) }
func (v U32) Encode(w *Writer)  { w.WriteUint32(uint32(v)) }
func (v U64) Encode(w *Writer)  { w.WriteUint64(uint64(v)) }
func (v I32) Encode(w *Writer)  { w.WriteUint32(uint32(v)) }
func (v I64) Encode(w *Writer)  { w.WriteUint64(uint64(v)) }
func (v Bool) Encode(w *Writer) { w.WriteBool(bool(v)) }

func (v String) Encode(w *Writer)      { w.WriteString(string(v)) }
func (v String) EncodeShort(w *Writer) { w.WriteShortBytes([]byte(v)) }

func (v Bytes) Encode(w *Writer)      { w.WriteBytes(v) }
func (v Bytes) EncodeShort(w *Writer) { w.WriteShortBytes(v) }

func (v *U8) Decode(r *Reader) (err error) {
	var x uint8
	x, err = r.ReadUint8()
	*v = U8(x)
	return err
}

func (v *U16) Decode(r *Reader) (err error) {
	var x uint16
	x, err = r.ReadUint16()
	*v = U16(x)
	return err
}

func (v *U32) Decode(r *Reader) (err error) {
	var x uint32
	x, err = r.ReadUint32()
	*v = U32(x)
	return err
}

func (v *U64) Decode(r *Reader) (err error) {
	var x uint64
	x, err = r.ReadUint64()
	*v = U64(x)
	return err
}

func (v *I32) Decode(r *Reader) (err error) {
	var x int32
	x, err = r.ReadInt32()
	*v = I32(x)
	return err
}

func (v *I64) Decode(r *Reader) (err error) {
	var x int64
	x, err = r.ReadInt64()
	*v = I64(x)
	return err
}

func (v *Bool) Decode(r *Reader) (err error) {
	var x bool
	x, err = r.ReadBool()
	*v = Bool(x)
	return err
}

func (v *String) Decode(r *Reader) error {
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	*v = String(s)
	return nil
}

func (v *String) DecodeShort(r *Reader) error {
	s, err := r.ReadShortString()
	if err != nil {
		return err
	}
	*v = String(s)
	return nil
}

func (v *String) DecodeSized(r *Reader, n int) error {
	b, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	*v = String(lossyString(b))
	return nil
}

func (v *Bytes) Decode(r *Reader) error { return v.DecodeShort(r) }

func (v *Bytes) DecodeShort(r *Reader) error {
	b, err := r.ReadShortBytes()
	if err != nil {
		return err
	}
	*v = b
	return nil
}

func (v *Bytes) DecodeSized(r *Reader, n int) error {
	b, err := r.ReadBytes(n)
	if err != nil {
		return err
	}
	*v = b
	return nil
}

// lossyString converts b to a string, replacing invalid UTF-8 with U+FFFD.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
