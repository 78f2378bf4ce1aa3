package dynproto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrTruncated = errors.New("dynproto: truncated input")
	ErrOverflow  = errors.New("dynproto: varint overflows 64 bits")
)

// AppendUvarint appends v as a base-128 varint, least significant group first.
func AppendUvarint(b []byte, v uint64) []byte {
	return protowire.AppendVarint(b, v)
}

// AppendSvarint appends the zig-zag varint of v.
func AppendSvarint(b []byte, v int64) []byte {
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

// DecodeUvarint reads a varint from the start of b and returns it with the
// number of bytes consumed.
func DecodeUvarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, consumeError(n)
	}
	return v, n, nil
}

// DecodeSvarint is the zig-zag counterpart of DecodeUvarint.
func DecodeSvarint(b []byte) (int64, int, error) {
	v, n, err := DecodeUvarint(b)
	if err != nil {
		return 0, 0, err
	}
	return protowire.DecodeZigZag(v), n, nil
}

// ZigZag maps signed integers onto unsigned ones so that small magnitudes
// stay short: 0 -> 0, -1 -> 1, 1 -> 2, -2 -> 3.
func ZigZag(v int64) uint64 { return protowire.EncodeZigZag(v) }

// consumeError maps protowire's negative lengths onto package errors.
// protowire reports -1 for truncation and -3 for varint overflow.
func consumeError(n int) error {
	err := protowire.ParseError(n)
	switch n {
	case -1:
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	case -3:
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	default:
		return err
	}
}
