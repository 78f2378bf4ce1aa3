package crypto

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync/atomic"

	"github.com/TheusHen/qwire/qwire/codec"
	"github.com/TheusHen/qwire/qwire/crypto/tea"
)

var (
	ErrEnvelopeConsumed = errors.New("crypto: ecdh envelope already used")
	ErrEnvelopeFormat   = errors.New("crypto: malformed envelope")
)

// EnvelopeKind is the one-byte identifier a peer uses to pick the decryption
// routine for an envelope.
type EnvelopeKind uint8

const (
	EnvelopeKindEcdh    EnvelopeKind = 0x87
	EnvelopeKindSession EnvelopeKind = 0x45
)

// Envelope encrypts payloads for the server.
type Envelope interface {
	// Encrypt wraps data with the envelope's header and key material.
	Encrypt(key, data []byte) ([]byte, error)
	ID() EnvelopeKind
}

const (
	envelopeMagic0 = 0x02
	envelopeMagic1 = 0x01
	envelopeTag    = 0x0131

	// DefaultServerKeyVersion pairs with DefaultServerPublicKey.
	DefaultServerKeyVersion = 1
)

// DefaultServerPublicKey is the built-in P-256 server key used when no
// rotated key is available.
var DefaultServerPublicKey = mustHex("04" +
	"EDB8906046F5BFBE9ABBC5A88B37D70A6006BFBABC1F0CD49DFB33505E63EFC5" +
	"D78EE4E0A4595033B93D02096DCD3190279211F7B4F6785079E19004AA0E03BC")

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

type ecdhConfig struct {
	curve     Curve
	version   uint16
	serverKey []byte
	rand      io.Reader
	kdf       KeyDerivation
}

// EcdhOption configures NewEcdh.
type EcdhOption func(*ecdhConfig)

// WithServerKey sets the server public key and its version. Without it the
// built-in P-256 key is used.
func WithServerKey(version uint16, key []byte) EcdhOption {
	return func(c *ecdhConfig) {
		c.version = version
		c.serverKey = slices.Clone(key)
	}
}

func WithCurve(curve Curve) EcdhOption {
	return func(c *ecdhConfig) { c.curve = curve }
}

// WithRand replaces crypto/rand as the source of the ephemeral scalar.
func WithRand(r io.Reader) EcdhOption {
	return func(c *ecdhConfig) { c.rand = r }
}

func WithKeyDerivation(k KeyDerivation) EcdhOption {
	return func(c *ecdhConfig) { c.kdf = k }
}

// Ecdh is a one-shot key agreement envelope. The shared secret is computed on
// construction; the first Encrypt consumes the envelope and wipes the
// ephemeral private key.
type Ecdh struct {
	curve    Curve
	version  uint16
	private  []byte
	public   []byte
	secret   []byte
	shareKey []byte
	used     atomic.Bool
}

// NewEcdh generates an ephemeral keypair and agrees a TEA key with the
// server public key.
func NewEcdh(opts ...EcdhOption) (*Ecdh, error) {
	cfg := ecdhConfig{
		curve:     CurveP256,
		version:   DefaultServerKeyVersion,
		serverKey: DefaultServerPublicKey,
		kdf:       KeyDerivationRaw,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := ValidatePublicKey(cfg.curve, cfg.serverKey); err != nil {
		return nil, err
	}
	kp, err := GenerateKeyPair(cfg.curve, cfg.rand)
	if err != nil {
		return nil, err
	}
	secret, err := SharedSecret(cfg.curve, kp.PrivateKey, cfg.serverKey)
	if err != nil {
		zero(kp.PrivateKey)
		return nil, err
	}
	if len(kp.PublicKey) > 0xFFFF {
		return nil, fmt.Errorf("%w: public key of %d bytes", ErrEnvelopeFormat, len(kp.PublicKey))
	}
	return &Ecdh{
		curve:    cfg.curve,
		version:  cfg.version,
		private:  kp.PrivateKey,
		public:   kp.PublicKey,
		secret:   secret,
		shareKey: cfg.kdf.DeriveKey(secret),
	}, nil
}

// KeySource supplies the current server public key for an account.
type KeySource interface {
	FetchKey(ctx context.Context, uin uint64) (version uint16, key []byte, err error)
}

// LoadEcdh fetches the server key for uin from src and builds an Ecdh
// envelope around it. opts may override everything except the server key.
func LoadEcdh(ctx context.Context, src KeySource, uin uint64, opts ...EcdhOption) (*Ecdh, error) {
	version, key, err := src.FetchKey(ctx, uin)
	if err != nil {
		return nil, err
	}
	all := make([]EcdhOption, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithServerKey(version, key))
	return NewEcdh(all...)
}

func (e *Ecdh) ID() EnvelopeKind { return EnvelopeKindEcdh }

func (e *Ecdh) Curve() Curve { return e.curve }

// PublicKey returns the uncompressed ephemeral public point sent to the server.
func (e *Ecdh) PublicKey() []byte { return slices.Clone(e.public) }

// SharedKey returns the 16-byte TEA key derived from the agreement.
func (e *Ecdh) SharedKey() []byte { return slices.Clone(e.shareKey) }

// Secret returns the raw shared secret.
func (e *Ecdh) Secret() []byte { return slices.Clone(e.secret) }

func (e *Ecdh) KeyVersion() uint16 { return e.version }

// Used reports whether Encrypt has already been called.
func (e *Ecdh) Used() bool { return e.used.Load() }

// Encrypt produces
//
//	02 01 | u16 len(key) key | u16 0x0131 | u16 version | u16 len(pub) pub | TEA(shared, data)
//
// It succeeds at most once per Ecdh. A call that fails, for example on a key
// longer than 65535 bytes, leaves the envelope unused.
func (e *Ecdh) Encrypt(key, data []byte) ([]byte, error) {
	if e.used.Load() {
		return nil, ErrEnvelopeConsumed
	}
	out, err := codec.NewFilled(func(w *codec.Writer) error {
		w.WriteUint8(envelopeMagic0)
		w.WriteUint8(envelopeMagic1)
		w.WriteShortBytes(key)
		w.WriteUint16(envelopeTag)
		w.WriteUint16(e.version)
		w.WriteShortBytes(e.public)
		return w.EncryptedWrite(e.shareKey, data)
	})
	if err != nil {
		return nil, err
	}
	if !e.used.CompareAndSwap(false, true) {
		return nil, ErrEnvelopeConsumed
	}
	zero(e.private)
	e.private = nil
	return out, nil
}

// EcdhSession reuses a token from an earlier key agreement. The TEA key is
// supplied per call.
type EcdhSession struct {
	token []byte
}

func NewEcdhSession(token []byte) *EcdhSession {
	return &EcdhSession{token: slices.Clone(token)}
}

func (s *EcdhSession) ID() EnvelopeKind { return EnvelopeKindSession }

func (s *EcdhSession) Token() []byte { return slices.Clone(s.token) }

// Encrypt produces u16 len(token) | token | TEA(key, data). A key shorter
// than 16 bytes fails before anything is written; longer keys use their first
// 16 bytes.
func (s *EcdhSession) Encrypt(key, data []byte) ([]byte, error) {
	ct, err := tea.Encrypt(key, data)
	if err != nil {
		return nil, err
	}
	return codec.NewFilled(func(w *codec.Writer) error {
		w.WriteShortBytes(s.token)
		w.WriteBytes(ct)
		return nil
	})
}
