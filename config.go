// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package verkle

import (
	"github.com/verkle-labs/trie/crypto"
	"github.com/verkle-labs/trie/stem"
	"github.com/verkle-labs/trie/triekey"
)

// DefaultMaxBatchSize bounds the peak size of a single flush in the
// batched commitment engine (§4.6).
const DefaultMaxBatchSize = 1000

// Config collects the options recognised by this package (§6.4). It is
// built with New plus a set of Option values, and is safe to share
// across tries that are meant to see each other's cache effects (§5);
// tries that should not share state should each get their own Config.
type Config struct {
	crypto *crypto.Config

	maxBatchSize int
	stemHasher   *stem.Hasher
	keys         *triekey.Adapter
	factory      NodeFactory

	ci *cryptoOps
}

// Option configures a Config produced by New.
type Option func(*options)

type options struct {
	maxBatchSize                   int
	stemCacheCapacity              int
	addressCommitmentCacheCapacity int
	preloadedStems                 map[string][]byte
	factory                        NodeFactory
}

// WithMaxBatchSize overrides DefaultMaxBatchSize.
func WithMaxBatchSize(n int) Option {
	return func(o *options) { o.maxBatchSize = n }
}

// WithStemCacheCapacity turns on a bounded LRU cache of index→stem,
// instead of the default no-op cache.
func WithStemCacheCapacity(n int) Option {
	return func(o *options) { o.stemCacheCapacity = n }
}

// WithAddressCommitmentCacheCapacity turns on a bounded LRU cache of
// address→address-commitment, instead of the default no-op cache.
func WithAddressCommitmentCacheCapacity(n int) Option {
	return func(o *options) { o.addressCommitmentCacheCapacity = n }
}

// WithPreloadedStems seeds the stem cache. Keys are 64 bytes: the
// zero-left-padded 32-byte address followed by the 32-byte big-endian
// index scalar; values are 31-byte stems. The seed is kept only when
// WithStemCacheCapacity turns on the LRU cache.
func WithPreloadedStems(seed map[string][]byte) Option {
	return func(o *options) { o.preloadedStems = seed }
}

// WithNodeFactory attaches the NodeFactory used to lazily resolve
// Stored placeholders (§4.8). Without one, a trie built from this
// Config cannot reload persisted state.
func WithNodeFactory(factory NodeFactory) Option {
	return func(o *options) { o.factory = factory }
}

// New builds a Config, including the curve setup (the one place the SRS
// is generated or loaded), and fails with a *CryptoError if that setup
// fails.
func New(opts ...Option) (*Config, error) {
	o := &options{maxBatchSize: DefaultMaxBatchSize}
	for _, apply := range opts {
		apply(o)
	}

	cryptoConf, err := crypto.NewConfig()
	if err != nil {
		return nil, &CryptoError{Underlying: err}
	}

	hasher := stem.NewHasher(cryptoConf, stem.Config{
		StemCacheCapacity:              o.stemCacheCapacity,
		AddressCommitmentCacheCapacity: o.addressCommitmentCacheCapacity,
		Preloaded:                      o.preloadedStems,
	})

	return &Config{
		crypto:       cryptoConf,
		maxBatchSize: o.maxBatchSize,
		stemHasher:   hasher,
		keys:         triekey.NewAdapter(hasher),
		factory:      o.factory,
		ci:           &cryptoOps{cfg: cryptoConf},
	}, nil
}

// ops returns the cryptoOps bridge this Config was built with, used by
// the trie facades (tree.go) and the batch/hash passes.
func (c *Config) ops() *cryptoOps {
	return c.ci
}

// Keys returns the trie-key adapter (C3) derived from this Config's
// stem hasher, for translating addresses/slots/chunk IDs into trie
// keys (§4.3).
func (c *Config) Keys() *triekey.Adapter {
	return c.keys
}

// StemHasher exposes the underlying stem hasher (C2) directly, for
// callers that need ManyStems without going through Keys.
func (c *Config) StemHasher() *stem.Hasher {
	return c.stemHasher
}
