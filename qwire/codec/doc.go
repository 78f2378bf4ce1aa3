// Package codec provides the byte-level building blocks of the qwire wire format.
//
// A Reader walks an input buffer and a Writer builds an output buffer. Values
// cross the boundary through the Encodable and Decodable interfaces, each with
// a normal form and a "short" form that carries a 2-byte big-endian length.
// The same package parses and builds the tag/length/value maps used for
// optional protocol fields, frames uni packages, and offers the zlib, gzip
// and lz4 transforms applied to packet bodies.
package codec
