package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var (
	ErrPublicKeyInvalid = errors.New("crypto: invalid public key")
	ErrPrivateKeySize   = errors.New("crypto: invalid private key")
	ErrUnknownCurve     = errors.New("crypto: unknown curve")
	ErrRandomSource     = errors.New("crypto: random source produced no usable scalar")
)

// Curve names the elliptic curve used for key agreement.
type Curve uint8

const (
	CurveP256 Curve = iota + 1
	CurveSecp256k1
)

func (c Curve) String() string {
	switch c {
	case CurveP256:
		return "P-256"
	case CurveSecp256k1:
		return "secp256k1"
	default:
		return "unknown"
	}
}

// scalarAttempts bounds rejection sampling of private scalars. Each attempt
// fails with probability below 2^-32 for both curves.
const scalarAttempts = 8

// KeyPair is an ephemeral key agreement keypair. PublicKey is the
// uncompressed SEC 1 point (0x04 || X || Y).
type KeyPair struct {
	Curve      Curve
	PrivateKey []byte
	PublicKey  []byte
}

// GenerateKeyPair draws a private scalar from r, or crypto/rand when r is nil.
func GenerateKeyPair(c Curve, r io.Reader) (KeyPair, error) {
	if r == nil {
		r = rand.Reader
	}
	var scalar [32]byte
	for i := 0; i < scalarAttempts; i++ {
		if _, err := io.ReadFull(r, scalar[:]); err != nil {
			return KeyPair{}, err
		}
		kp, ok, err := keyPairFromScalar(c, scalar[:])
		if err != nil {
			return KeyPair{}, err
		}
		if ok {
			return kp, nil
		}
	}
	return KeyPair{}, ErrRandomSource
}

// keyPairFromScalar reports ok=false when the scalar is zero or not below the
// curve order.
func keyPairFromScalar(c Curve, scalar []byte) (KeyPair, bool, error) {
	switch c {
	case CurveP256:
		priv, err := ecdh.P256().NewPrivateKey(scalar)
		if err != nil {
			return KeyPair{}, false, nil
		}
		return KeyPair{
			Curve:      c,
			PrivateKey: priv.Bytes(),
			PublicKey:  priv.PublicKey().Bytes(),
		}, true, nil
	case CurveSecp256k1:
		var s secp256k1.ModNScalar
		if overflow := s.SetByteSlice(scalar); overflow || s.IsZero() {
			return KeyPair{}, false, nil
		}
		priv := secp256k1.NewPrivateKey(&s)
		return KeyPair{
			Curve:      c,
			PrivateKey: priv.Serialize(),
			PublicKey:  priv.PubKey().SerializeUncompressed(),
		}, true, nil
	default:
		return KeyPair{}, false, fmt.Errorf("%w: %d", ErrUnknownCurve, c)
	}
}

// SharedSecret computes the Diffie-Hellman shared secret, the 32-byte X
// coordinate of privateKey * peerPublicKey.
func SharedSecret(c Curve, privateKey, peerPublicKey []byte) ([]byte, error) {
	switch c {
	case CurveP256:
		priv, err := ecdh.P256().NewPrivateKey(privateKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPrivateKeySize, err)
		}
		pub, err := ecdh.P256().NewPublicKey(peerPublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPublicKeyInvalid, err)
		}
		return priv.ECDH(pub)
	case CurveSecp256k1:
		if len(privateKey) != secp256k1.PrivKeyBytesLen {
			return nil, fmt.Errorf("%w: %d bytes", ErrPrivateKeySize, len(privateKey))
		}
		pub, err := secp256k1.ParsePubKey(peerPublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPublicKeyInvalid, err)
		}
		priv := secp256k1.PrivKeyFromBytes(privateKey)
		defer priv.Zero()
		if priv.Key.IsZero() {
			return nil, ErrPrivateKeySize
		}
		return secp256k1.GenerateSharedSecret(priv, pub), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCurve, c)
	}
}

// ValidatePublicKey checks that key is a point on curve c.
func ValidatePublicKey(c Curve, key []byte) error {
	switch c {
	case CurveP256:
		if _, err := ecdh.P256().NewPublicKey(key); err != nil {
			return fmt.Errorf("%w: %v", ErrPublicKeyInvalid, err)
		}
		return nil
	case CurveSecp256k1:
		if _, err := secp256k1.ParsePubKey(key); err != nil {
			return fmt.Errorf("%w: %v", ErrPublicKeyInvalid, err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownCurve, c)
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
