package dynproto

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrWireType = errors.New("dynproto: unsupported wire type")

// Field is one decoded field. Scalar wire types fill Raw, length-delimited
// fields fill Data.
type Field struct {
	Key  uint64
	Type WireType
	Raw  uint64
	Data []byte
}

func (f Field) Uint64() uint64   { return f.Raw }
func (f Field) Int64() int64     { return protowire.DecodeZigZag(f.Raw) }
func (f Field) Bool() bool       { return f.Raw != 0 }
func (f Field) Float32() float32 { return math.Float32frombits(uint32(f.Raw)) }
func (f Field) Float64() float64 { return math.Float64frombits(f.Raw) }
func (f Field) Text() string     { return string(f.Data) }

// Message parses a length-delimited field as a nested message.
func (f Field) Message() ([]Field, error) {
	if f.Type != WireBytes {
		return nil, fmt.Errorf("%w: field %d is type %d", ErrWireType, f.Key, f.Type)
	}
	return Parse(f.Data)
}

// Parse splits b into fields in wire order. A field cut short at the end of
// b ends the parse and the fields read so far are returned without an error;
// only group or reserved wire types fail.
func Parse(b []byte) ([]Field, error) {
	var fields []Field
	for len(b) > 0 {
		tag, n := protowire.ConsumeVarint(b)
		if n < 0 {
			break
		}
		b = b[n:]

		f := Field{Key: tag >> 3, Type: WireType(tag & 7)}
		switch f.Type {
		case WireVarint:
			f.Raw, n = protowire.ConsumeVarint(b)
		case WireFixed32:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.Raw = uint64(v)
		case WireFixed64:
			f.Raw, n = protowire.ConsumeFixed64(b)
		case WireBytes:
			var v []byte
			v, n = protowire.ConsumeBytes(b)
			f.Data = append([]byte(nil), v...)
		default:
			return fields, fmt.Errorf("%w: %d for field %d", ErrWireType, f.Type, f.Key)
		}
		if n < 0 {
			break
		}
		b = b[n:]
		fields = append(fields, f)
	}
	return fields, nil
}
