package tea

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	xtea "golang.org/x/crypto/tea"
)

const (
	// KeySize is the number of key bytes consumed by NewCipher.
	KeySize = 16
	// BlockSize is the cipher block size in bytes.
	BlockSize = 8
	// MinCiphertextSize is the length of the ciphertext of an empty message.
	MinCiphertextSize = 16
)

var (
	ErrKeySize        = errors.New("tea: key shorter than 16 bytes")
	ErrBlockAlignment = errors.New("tea: ciphertext not made of 8-byte blocks")
	ErrPadding        = errors.New("tea: invalid padding header")
)

// rounds is the Feistel half-round count handed to x/crypto/tea; 32
// half-rounds make the 16 full cycles of the protocol variant.
const rounds = 32

// Cipher is an immutable TEA key schedule.
type Cipher struct {
	block cipher.Block
	rand  io.Reader
}

// NewCipher builds a cipher from the first 16 bytes of key.
func NewCipher(key []byte) (*Cipher, error) {
	return NewCipherWithRand(key, rand.Reader)
}

// NewCipherWithRand is like NewCipher but draws padding bytes from r.
// r must be a cryptographically secure source outside of tests.
func NewCipherWithRand(key []byte, r io.Reader) (*Cipher, error) {
	if len(key) < KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrKeySize, len(key))
	}
	block, err := xtea.NewCipherWithRounds(key[:KeySize], rounds)
	if err != nil {
		return nil, err
	}
	return &Cipher{block: block, rand: r}, nil
}

// EncryptedSize returns the ciphertext length for a plaintext of n bytes.
func EncryptedSize(n int) int {
	fill := 10 - (n+1)%8
	return fill + n + 7
}

// Encrypt pads and encrypts plaintext. The error is non-nil only when the
// random source fails.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	fill := 10 - (len(plaintext)+1)%8
	total := fill + len(plaintext) + 7

	buf := make([]byte, total)
	buf[0] = byte(fill-3) | 0xF8
	if _, err := io.ReadFull(c.rand, buf[1:fill]); err != nil {
		return nil, err
	}
	copy(buf[fill:], plaintext)

	// tr is the previous ciphertext block, to the previous chained input.
	var tr, to uint64
	for i := 0; i < total; i += BlockSize {
		block := binary.BigEndian.Uint64(buf[i:]) ^ tr
		tr = c.encode(block) ^ to
		to = block
		binary.BigEndian.PutUint64(buf[i:], tr)
	}
	return buf, nil
}

// Decrypt reverses Encrypt and strips the padding.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	n := len(ciphertext)
	if n < MinCiphertextSize || n%BlockSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrBlockAlignment, n)
	}

	out := make([]byte, n)
	var state, prev uint64
	for i := 0; i < n; i += BlockSize {
		block := binary.BigEndian.Uint64(ciphertext[i:])
		state = c.decode(state ^ block)
		binary.BigEndian.PutUint64(out[i:], state^prev)
		prev = block
	}

	start := int(out[0]&7) + 3
	end := n - 7
	if start > end {
		return nil, ErrPadding
	}
	return out[start:end], nil
}

func (c *Cipher) encode(v uint64) uint64 {
	var b [BlockSize]byte
	binary.BigEndian.PutUint64(b[:], v)
	c.block.Encrypt(b[:], b[:])
	return binary.BigEndian.Uint64(b[:])
}

func (c *Cipher) decode(v uint64) uint64 {
	var b [BlockSize]byte
	binary.BigEndian.PutUint64(b[:], v)
	c.block.Decrypt(b[:], b[:])
	return binary.BigEndian.Uint64(b[:])
}

// Encrypt encrypts data under key.
func Encrypt(key, data []byte) ([]byte, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Encrypt(data)
}

// Decrypt decrypts data under key.
func Decrypt(key, data []byte) ([]byte, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Decrypt(data)
}
