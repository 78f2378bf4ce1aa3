package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestTLVRoundTrip(t *testing.T) {
	for _, width := range []TagWidth{TagWidth1, TagWidth2, TagWidth4} {
		in := TLVMap{
			0x01: []byte("first"),
			0x18: {},
			0x7f: bytes.Repeat([]byte{0xee}, 300),
		}
		w := NewWriter()
		w.WriteTLVMap(width, in)
		w.WriteTLVTerminator(width)
		w.WriteBytes([]byte("trailer"))
		buf, err := w.Bytes()
		if err != nil {
			t.Fatalf("width %d: Bytes: %v", width, err)
		}

		r := NewReader(buf)
		out, err := r.ReadTLVMap(width)
		if err != nil {
			t.Fatalf("width %d: ReadTLVMap: %v", width, err)
		}
		if len(out) != len(in) {
			t.Fatalf("width %d: got %d entries, want %d", width, len(out), len(in))
		}
		for tag, v := range in {
			if !bytes.Equal(out[tag], v) {
				t.Fatalf("width %d: tag %#x mismatch", width, tag)
			}
		}
		if string(r.ReadAvailable()) != "trailer" {
			t.Fatalf("width %d: terminator did not stop the parse", width)
		}
	}
}

func TestTLVLastWriteWins(t *testing.T) {
	w := NewWriter()
	w.WriteTLV(TagWidth2, 0x106, []byte("old"))
	w.WriteTLV(TagWidth2, 0x106, []byte("new"))
	buf, _ := w.Bytes()
	m, err := NewReader(buf).ReadTLVMap(TagWidth2)
	if err != nil {
		t.Fatalf("ReadTLVMap: %v", err)
	}
	if len(m) != 1 || string(m[0x106]) != "new" {
		t.Fatalf("got %v", m)
	}
}

func TestTLVWideTagIsTruncatedTo16Bits(t *testing.T) {
	buf := []byte{0x00, 0x01, 0x00, 0x10, 0x00, 0x01, 'x'}
	m, err := NewReader(buf).ReadTLVMap(TagWidth4)
	if err != nil {
		t.Fatalf("ReadTLVMap: %v", err)
	}
	if string(m[0x0010]) != "x" {
		t.Fatalf("got %v", m)
	}
}

func TestTLVTruncatedInput(t *testing.T) {
	cases := []struct {
		name  string
		width TagWidth
		buf   []byte
		want  int
	}{
		{"empty", TagWidth2, nil, 0},
		{"short tag", TagWidth4, []byte{0x00, 0x01}, 0},
		{"tag only", TagWidth2, []byte{0x00, 0x01}, 0},
		{"short value", TagWidth2, []byte{0x00, 0x01, 0x00, 0x04, 'a'}, 0},
		{"partial", TagWidth1, []byte{0x01, 0x00, 0x01, 'a', 0x02, 0x00, 0x09, 'b'}, 1},
	}
	for _, tc := range cases {
		m, err := NewReader(tc.buf).ReadTLVMap(tc.width)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if len(m) != tc.want {
			t.Fatalf("%s: got %d entries, want %d", tc.name, len(m), tc.want)
		}
	}
}

func TestTLVUnsupportedWidth(t *testing.T) {
	if _, err := NewReader([]byte{1, 2, 3}).ReadTLVMap(3); !errors.Is(err, ErrTagWidth) {
		t.Fatalf("expected ErrTagWidth, got %v", err)
	}
	w := NewWriter()
	w.WriteTLV(3, 1, nil)
	if !errors.Is(w.Err(), ErrTagWidth) {
		t.Fatalf("expected ErrTagWidth, got %v", w.Err())
	}
}

func TestTLVWriteRejectsBadTags(t *testing.T) {
	w := NewWriter()
	w.WriteTLV(TagWidth2, TLVTerminator, []byte("x"))
	if !errors.Is(w.Err(), ErrTagReserved) {
		t.Fatalf("expected ErrTagReserved, got %v", w.Err())
	}
	w = NewWriter()
	w.WriteTLV(TagWidth1, 0x100, []byte("x"))
	if !errors.Is(w.Err(), ErrTagOverflow) {
		t.Fatalf("expected ErrTagOverflow, got %v", w.Err())
	}
}

func TestTLVTags(t *testing.T) {
	m := TLVMap{0x30: nil, 0x01: nil, 0x10: nil}
	tags := m.Tags()
	if len(tags) != 3 || tags[0] != 0x01 || tags[1] != 0x10 || tags[2] != 0x30 {
		t.Fatalf("got %v", tags)
	}
}
