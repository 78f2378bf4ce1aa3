// Package dynproto builds protobuf-compatible byte streams without a schema.
//
// A Message maps field numbers to a closed set of Value kinds and marshals
// them with the standard varint, fixed32, fixed64 and length-delimited wire
// types. Parse walks an encoded stream back into raw fields.
package dynproto
