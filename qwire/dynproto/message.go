package dynproto

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxKey is the largest field key that still fits a 64-bit tag after the
// 3-bit wire type is appended.
const MaxKey = math.MaxUint64 >> 3

// MaxDepth is the deepest nesting of messages Marshal accepts.
const MaxDepth = 100

var (
	ErrKey   = errors.New("dynproto: field key out of range")
	ErrDepth = errors.New("dynproto: message nested too deeply")
)

// WireType is the low 3 bits of a field tag.
type WireType = protowire.Type

const (
	WireVarint  WireType = protowire.VarintType
	WireFixed64 WireType = protowire.Fixed64Type
	WireBytes   WireType = protowire.BytesType
	WireFixed32 WireType = protowire.Fixed32Type
)

// Value is a field value that can encode itself under a key. The set of
// implementations is closed: Bool, Int32, Int64, Uint32, Uint64, Float32,
// Float64, String, Bytes, Uint64s and Message.
type Value interface {
	appendField(b []byte, key uint64, depth int) ([]byte, error)
}

type (
	Bool    bool
	Int32   int32
	Int64   int64
	Uint32  uint32
	Uint64  uint64
	Float32 float32
	Float64 float64
	String  string
	// Bytes encodes each byte as its own length-delimited field of length 1
	// under the same key.
	Bytes []byte
	// Uint64s encodes one varint field per element under the same key.
	Uint64s []uint64
)

// Message is a schema-less protobuf message.
type Message map[uint64]Value

func appendTag(b []byte, key uint64, t WireType) []byte {
	return protowire.AppendVarint(b, key<<3|uint64(t))
}

func (v Bool) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireVarint)
	return protowire.AppendVarint(b, protowire.EncodeBool(bool(v))), nil
}

func (v Int32) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireVarint)
	return AppendSvarint(b, int64(v)), nil
}

func (v Int64) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireVarint)
	return AppendSvarint(b, int64(v)), nil
}

func (v Uint32) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireVarint)
	return protowire.AppendVarint(b, uint64(v)), nil
}

func (v Uint64) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireVarint)
	return protowire.AppendVarint(b, uint64(v)), nil
}

func (v Float32) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireFixed32)
	return protowire.AppendFixed32(b, math.Float32bits(float32(v))), nil
}

func (v Float64) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireFixed64)
	return protowire.AppendFixed64(b, math.Float64bits(float64(v))), nil
}

func (v String) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	b = appendTag(b, key, WireBytes)
	return protowire.AppendString(b, string(v)), nil
}

func (v Bytes) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	for _, c := range v {
		b = appendTag(b, key, WireBytes)
		b = protowire.AppendBytes(b, []byte{c})
	}
	return b, nil
}

func (v Uint64s) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	for _, x := range v {
		b, _ = Uint64(x).appendField(b, key, 0)
	}
	return b, nil
}

func (m Message) appendField(b []byte, key uint64, depth int) ([]byte, error) {
	inner, err := m.marshal(depth + 1)
	if err != nil {
		return nil, err
	}
	b = appendTag(b, key, WireBytes)
	return protowire.AppendBytes(b, inner), nil
}

// Keys returns the message's field keys in the order Marshal emits them.
func (m Message) Keys() []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Marshal encodes every field of m. Fields are emitted in ascending key
// order; receivers must not depend on it. Messages nested more than MaxDepth
// levels, including a message that contains itself, fail with ErrDepth.
func (m Message) Marshal() ([]byte, error) {
	return m.marshal(0)
}

func (m Message) marshal(depth int) ([]byte, error) {
	if depth > MaxDepth {
		return nil, ErrDepth
	}
	b := make([]byte, 0, 64)
	for _, k := range m.Keys() {
		if k > MaxKey {
			return nil, fmt.Errorf("%w: %d", ErrKey, k)
		}
		v := m[k]
		if v == nil {
			continue
		}
		var err error
		if b, err = v.appendField(b, k, depth); err != nil {
			return nil, err
		}
	}
	return b, nil
}
