package crypto

import (
	"fmt"

	"github.com/TheusHen/qwire/qwire/codec"
	"github.com/TheusHen/qwire/qwire/crypto/tea"
)

// EcdhEnvelope is an opened Ecdh envelope as seen by the server.
type EcdhEnvelope struct {
	Key        []byte
	KeyVersion uint16
	PublicKey  []byte
	Payload    []byte
}

// OpenEcdhEnvelope parses an envelope produced by Ecdh.Encrypt and decrypts
// its payload with the server keypair. kdf must match the client's.
func OpenEcdhEnvelope(server KeyPair, kdf KeyDerivation, envelope []byte) (*EcdhEnvelope, error) {
	r := codec.NewReader(envelope)
	m0, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelopeFormat, err)
	}
	m1, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelopeFormat, err)
	}
	if m0 != envelopeMagic0 || m1 != envelopeMagic1 {
		return nil, fmt.Errorf("%w: magic %02x %02x", ErrEnvelopeFormat, m0, m1)
	}
	out := &EcdhEnvelope{}
	if out.Key, err = r.ReadShortBytes(); err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrEnvelopeFormat, err)
	}
	tag, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelopeFormat, err)
	}
	if tag != envelopeTag {
		return nil, fmt.Errorf("%w: tag %#04x", ErrEnvelopeFormat, tag)
	}
	if out.KeyVersion, err = r.ReadUint16(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvelopeFormat, err)
	}
	if out.PublicKey, err = r.ReadShortBytes(); err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrEnvelopeFormat, err)
	}

	secret, err := SharedSecret(server.Curve, server.PrivateKey, out.PublicKey)
	if err != nil {
		return nil, err
	}
	if out.Payload, err = tea.Decrypt(kdf.DeriveKey(secret), r.ReadAvailable()); err != nil {
		return nil, err
	}
	return out, nil
}

// OpenSessionEnvelope parses an envelope produced by EcdhSession.Encrypt.
func OpenSessionEnvelope(key, envelope []byte) (token, payload []byte, err error) {
	r := codec.NewReader(envelope)
	if token, err = r.ReadShortBytes(); err != nil {
		return nil, nil, fmt.Errorf("%w: token: %v", ErrEnvelopeFormat, err)
	}
	if payload, err = tea.Decrypt(key, r.ReadAvailable()); err != nil {
		return nil, nil, err
	}
	return token, payload, nil
}
