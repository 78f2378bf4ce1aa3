package crypto

import "crypto/md5"

// KeyDerivation selects how a TEA key is derived from an ECDH shared secret.
type KeyDerivation uint8

const (
	// KeyDerivationRaw uses the first 16 bytes of the shared secret.
	KeyDerivationRaw KeyDerivation = iota
	// KeyDerivationMD5 uses MD5 over the first 16 bytes of the shared secret.
	KeyDerivationMD5
)

// DeriveKey turns a shared secret into a 16-byte TEA key.
func (k KeyDerivation) DeriveKey(secret []byte) []byte {
	head := secret
	if len(head) > 16 {
		head = head[:16]
	}
	if k == KeyDerivationMD5 {
		sum := md5.Sum(head)
		return sum[:]
	}
	key := make([]byte, 16)
	copy(key, head)
	return key
}

func (k KeyDerivation) String() string {
	if k == KeyDerivationMD5 {
		return "md5"
	}
	return "raw"
}
