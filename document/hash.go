package document

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hash is the BLAKE2b-256 digest of a document's source bytes.
type Hash [blake2b.Size256]byte

// ContentHash returns the identity of the given source bytes.
func ContentHash(data []byte) Hash {
	return Hash(blake2b.Sum256(data))
}

// String returns the digest in hexadecimal.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex digits, for logs.
func (h Hash) Short() string {
	return hex.EncodeToString(h[:6])
}

// IsZero reports whether h is the zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}
