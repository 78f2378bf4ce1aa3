// Package qwire holds the wire-level building blocks of a QQ protocol client.
//
// Subpackages:
//   - codec: the byte Reader and Writer, codec interfaces, TLV maps,
//     uni package framing and compression helpers
//   - dynproto: schema-less protobuf encoding over a key to value map
//   - crypto/tea: the 16-round TEA cipher with its padding and chaining mode
//   - crypto: ECDH key agreement and the Ecdh and EcdhSession envelopes
//   - crypto/keyrotate: client for the server key rotation endpoint
//
// Transport, login flows and message semantics are left to callers; these
// packages only turn values into bytes and back.
package qwire
