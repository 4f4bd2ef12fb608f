package verkle

import "fmt"

// CryptoError wraps a failure reported by the underlying curve library.
// It bubbles up to the caller of GetRootHash/Commit; there is no local
// retry (§7).
type CryptoError struct {
	Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("verkle: crypto failure: %s", e.Underlying)
}

func (e *CryptoError) Unwrap() error {
	return e.Underlying
}

// MissingNodeError means the node factory returned nothing for a
// location a sibling pointed at. This is fatal: the trie is truncated
// or corrupted.
type MissingNodeError struct {
	Location Location
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("verkle: no stored node at location %x", []byte(e.Location))
}

// InvariantViolation reports a structural check (§3.3) failing. Fatal;
// the trie that raised it is unusable afterwards.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("verkle: invariant violation: %s", e.Reason)
}

// InvalidKeyError is returned to the caller when a key is not exactly
// KeySize bytes long.
type InvalidKeyError struct {
	Got int
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("verkle: invalid key length %d, want %d", e.Got, KeySize)
}
