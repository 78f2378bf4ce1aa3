package codec

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
)

var (
	ErrCompressionFailed   = errors.New("codec: compression failed")
	ErrDecompressionFailed = errors.New("codec: decompression failed")
)

// Packet bodies may be compressed before framing. These helpers are pure
// byte transforms and never touch a Reader or Writer.

var zlibWriterPool = sync.Pool{
	New: func() interface{} {
		return zlib.NewWriter(nil)
	},
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(nil)
	},
}

var lz4WriterPool = sync.Pool{
	New: func() interface{} {
		return lz4.NewWriter(nil)
	},
}

func ZlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(zw)

	zw.Reset(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, errors.Join(ErrCompressionFailed, err)
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Join(ErrCompressionFailed, err)
	}
	return buf.Bytes(), nil
}

func ZlibDecompress(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecompressionFailed, err)
	}
	defer zr.Close()
	return readAllDecompressed(zr)
}

func GzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(gw)

	gw.Reset(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, errors.Join(ErrCompressionFailed, err)
	}
	if err := gw.Close(); err != nil {
		return nil, errors.Join(ErrCompressionFailed, err)
	}
	return buf.Bytes(), nil
}

func GzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecompressionFailed, err)
	}
	defer gr.Close()
	return readAllDecompressed(gr)
}

// LZ4Compress uses the lz4 frame format.
func LZ4Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	lw := lz4WriterPool.Get().(*lz4.Writer)
	defer lz4WriterPool.Put(lw)

	lw.Reset(&buf)
	if _, err := lw.Write(data); err != nil {
		return nil, errors.Join(ErrCompressionFailed, err)
	}
	if err := lw.Close(); err != nil {
		return nil, errors.Join(ErrCompressionFailed, err)
	}
	return buf.Bytes(), nil
}

func LZ4Decompress(data []byte) ([]byte, error) {
	return readAllDecompressed(lz4.NewReader(bytes.NewReader(data)))
}

func readAllDecompressed(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, errors.Join(ErrDecompressionFailed, err)
	}
	return buf.Bytes(), nil
}
