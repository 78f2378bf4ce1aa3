// Package tea implements the TEA variant used by the qwire protocol.
//
// Blocks are 64 bits wide and run through 16 TEA cycles from
// golang.org/x/crypto/tea. Messages are padded with a random prefix whose length
// is recorded in the first byte and chained block to block, so ciphertexts
// are always a multiple of 8 bytes and at least 16 bytes long.
package tea
