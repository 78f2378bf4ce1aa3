// Package keyrotate fetches the server's current ECDH public key from the
// key rotation endpoint. Fetcher satisfies crypto.KeySource, so a fetched key
// plugs straight into crypto.LoadEcdh.
package keyrotate
