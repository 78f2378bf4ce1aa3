// Package crypto builds the encrypted envelopes that carry login and
// session-establishment payloads.
//
// Two envelope kinds exist:
//   - Ecdh: a fresh elliptic-curve key agreement against the server's public
//     key, whose shared secret keys TEA over the payload
//   - EcdhSession: reuses a token from an earlier exchange and encrypts with
//     a caller-supplied TEA key
//
// Both implement Envelope. Key agreement runs on P-256 (the curve of the
// built-in server key) or secp256k1.
package crypto
