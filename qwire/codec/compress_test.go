package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("qwire compress payload "), 200)
	cases := []struct {
		name       string
		compress   func([]byte) ([]byte, error)
		decompress func([]byte) ([]byte, error)
	}{
		{"zlib", ZlibCompress, ZlibDecompress},
		{"gzip", GzipCompress, GzipDecompress},
		{"lz4", LZ4Compress, LZ4Decompress},
	}
	for _, tc := range cases {
		for i := 0; i < 2; i++ { // second pass reuses pooled writers
			c, err := tc.compress(data)
			if err != nil {
				t.Fatalf("%s: compress: %v", tc.name, err)
			}
			if len(c) >= len(data) {
				t.Fatalf("%s: expected repetitive data to shrink", tc.name)
			}
			d, err := tc.decompress(c)
			if err != nil {
				t.Fatalf("%s: decompress: %v", tc.name, err)
			}
			if !bytes.Equal(d, data) {
				t.Fatalf("%s: round trip mismatch", tc.name)
			}
		}
	}
}

func TestZlibHeader(t *testing.T) {
	c, err := ZlibCompress([]byte("x"))
	if err != nil {
		t.Fatalf("ZlibCompress: %v", err)
	}
	if c[0]&0x0f != 8 {
		t.Fatalf("expected deflate method in zlib header, got %#x", c[0])
	}
}

func TestDecompressGarbage(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef}
	if _, err := ZlibDecompress(garbage); !errors.Is(err, ErrDecompressionFailed) {
		t.Fatalf("zlib: expected ErrDecompressionFailed, got %v", err)
	}
	if _, err := GzipDecompress(garbage); !errors.Is(err, ErrDecompressionFailed) {
		t.Fatalf("gzip: expected ErrDecompressionFailed, got %v", err)
	}
	if _, err := LZ4Decompress(garbage); !errors.Is(err, ErrDecompressionFailed) {
		t.Fatalf("lz4: expected ErrDecompressionFailed, got %v", err)
	}
}
