package tea

import (
	"bytes"
	"crypto/rand"
	"errors"
	"reflect"
	"testing"
)

var testKey = []byte("0123456789ABCDEF")

func TestDecryptKnownVector(t *testing.T) {
	ct := []byte{
		0xb7, 0xb2, 0xe5, 0x2a, 0xf7, 0xf5, 0xb1, 0xfb, 0xf3, 0x7f, 0xc3, 0xd5,
		0x54, 0x6a, 0xc7, 0x56, 0x9a, 0xec, 0xd0, 0x1b, 0xba, 0xcf, 0x09, 0xbf,
	}
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(pt) != "MiraiGO Here" {
		t.Fatalf("got %q", pt)
	}
}

func TestRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	for n := 0; n <= 300; n++ {
		pt := make([]byte, n)
		if _, err := rand.Read(pt); err != nil {
			t.Fatalf("rand: %v", err)
		}
		ct, err := c.Encrypt(pt)
		if err != nil {
			t.Fatalf("Encrypt(%d): %v", n, err)
		}
		if len(ct)%BlockSize != 0 || len(ct) < MinCiphertextSize {
			t.Fatalf("len %d: bad ciphertext length %d", n, len(ct))
		}
		if len(ct) != EncryptedSize(n) {
			t.Fatalf("len %d: EncryptedSize=%d, got %d", n, EncryptedSize(n), len(ct))
		}
		out, err := c.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt(%d): %v", n, err)
		}
		if !bytes.Equal(out, pt) {
			t.Fatalf("len %d: round trip mismatch", n)
		}
	}
}

func TestEncryptKnownLength(t *testing.T) {
	c, _ := NewCipher(testKey)
	ct, err := c.Encrypt([]byte("MiraiGO Here"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(ct) != 24 {
		t.Fatalf("expected 24 bytes, got %d", len(ct))
	}
	pt, err := c.Decrypt(ct)
	if err != nil || string(pt) != "MiraiGO Here" {
		t.Fatalf("Decrypt: %q, %v", pt, err)
	}
}

func TestEncryptIsRandomized(t *testing.T) {
	c, _ := NewCipher(testKey)
	a, _ := c.Encrypt([]byte("same input"))
	b, _ := c.Encrypt([]byte("same input"))
	if bytes.Equal(a, b) {
		t.Fatalf("expected distinct ciphertexts for random padding")
	}
}

func TestDeterministicRand(t *testing.T) {
	seed := bytes.Repeat([]byte{0x42}, 64)
	c1, _ := NewCipherWithRand(testKey, bytes.NewReader(seed))
	c2, _ := NewCipherWithRand(testKey, bytes.NewReader(seed))
	a, err := c1.Encrypt([]byte("fixed"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := c2.Encrypt([]byte("fixed"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("expected identical ciphertexts for identical padding")
	}
}

func TestKeySize(t *testing.T) {
	for _, n := range []int{0, 1, 15} {
		if _, err := NewCipher(make([]byte, n)); !errors.Is(err, ErrKeySize) {
			t.Fatalf("len %d: expected ErrKeySize, got %v", n, err)
		}
	}
	// Extra key bytes are ignored.
	long := append(append([]byte(nil), testKey...), "trailing"...)
	c1, err := NewCipher(long)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	c2, _ := NewCipher(testKey)
	if !reflect.DeepEqual(c1.block, c2.block) {
		t.Fatalf("key schedule should only use the first 16 bytes")
	}
	if _, err := Encrypt([]byte("short"), nil); !errors.Is(err, ErrKeySize) {
		t.Fatalf("Encrypt: expected ErrKeySize, got %v", err)
	}
}

func TestDecryptBlockAlignment(t *testing.T) {
	c, _ := NewCipher(testKey)
	for _, n := range []int{0, 1, 7, 8, 15, 17, 23, 25} {
		if _, err := c.Decrypt(make([]byte, n)); !errors.Is(err, ErrBlockAlignment) {
			t.Fatalf("len %d: expected ErrBlockAlignment, got %v", n, err)
		}
	}
}

func TestDecryptGarbageDoesNotPanic(t *testing.T) {
	c, _ := NewCipher(testKey)
	other, _ := NewCipher([]byte("FEDCBA9876543210"))
	for i := 0; i < 200; i++ {
		ct, _ := other.Encrypt(make([]byte, i%20))
		pt, err := c.Decrypt(ct)
		if err != nil && !errors.Is(err, ErrPadding) {
			t.Fatalf("unexpected error: %v", err)
		}
		if err == nil && len(pt) > len(ct) {
			t.Fatalf("plaintext longer than ciphertext")
		}
	}
}

func TestFeistelInverse(t *testing.T) {
	c, _ := NewCipher(testKey)
	for _, v := range []uint64{0, 1, 0xffffffffffffffff, 0x0123456789abcdef} {
		if got := c.decode(c.encode(v)); got != v {
			t.Fatalf("decode(encode(%x)) = %x", v, got)
		}
	}
}

// referenceEncode is the textbook 16-cycle TEA block function with the key
// read as four big-endian words.
func referenceEncode(key []byte, v uint64) uint64 {
	var k [4]uint32
	for i := range k {
		k[i] = uint32(key[i*4])<<24 | uint32(key[i*4+1])<<16 | uint32(key[i*4+2])<<8 | uint32(key[i*4+3])
	}
	v0, v1 := uint32(v>>32), uint32(v)
	var sum uint32
	for i := 0; i < 16; i++ {
		sum += 0x9e3779b9
		v0 += (v1 + sum) ^ ((v1 << 4) + k[0]) ^ ((v1 >> 5) + k[1])
		v1 += (v0 + sum) ^ ((v0 << 4) + k[2]) ^ ((v0 >> 5) + k[3])
	}
	return uint64(v0)<<32 | uint64(v1)
}

func TestBlockMatchesReferenceRounds(t *testing.T) {
	c, err := NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	v := uint64(0x0123456789abcdef)
	for i := 0; i < 1000; i++ {
		want := referenceEncode(testKey, v)
		if got := c.encode(v); got != want {
			t.Fatalf("encode(%x) = %x, want %x", v, got, want)
		}
		if got := c.decode(want); got != v {
			t.Fatalf("decode(%x) = %x, want %x", want, got, v)
		}
		v = v*6364136223846793005 + 1442695040888963407
	}
}

func TestLongKeyUsesFirst16Bytes(t *testing.T) {
	long := append(append([]byte{}, testKey...), "ignored"...)
	ct, err := Encrypt(long, []byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := Decrypt(testKey, ct)
	if err != nil || string(pt) != "payload" {
		t.Fatalf("got %q %v", pt, err)
	}
}

func BenchmarkEncrypt(b *testing.B) {
	c, _ := NewCipher(testKey)
	msg := make([]byte, 1024)
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Encrypt(msg)
	}
}

func BenchmarkDecrypt(b *testing.B) {
	c, _ := NewCipher(testKey)
	ct, _ := c.Encrypt(make([]byte, 1024))
	b.SetBytes(int64(len(ct)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Decrypt(ct)
	}
}
