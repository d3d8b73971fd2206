package sink

import "github.com/OneOfOne/xxhash"

// Hashing wraps another Sink and accumulates an xxhash64 digest of every
// byte that passes through it, so a caller can verify a download's content
// against an out-of-band checksum without a second read of the file —
// grounded on fs/hrw.go's use of xxhash.Checksum64S for content digests,
// repurposed here from placement hashing to integrity verification.
type Hashing struct {
	inner Sink
	h     *xxhash.XXHash64
}

func NewHashing(inner Sink) *Hashing {
	return &Hashing{inner: inner, h: xxhash.New64()}
}

func (h *Hashing) Write(p []byte) (int, error) {
	n, err := h.inner.Write(p)
	if n > 0 {
		_, _ = h.h.Write(p[:n])
	}
	return n, err
}

func (h *Hashing) Complete() error { return h.inner.Complete() }
func (h *Hashing) Abort(err error) { h.inner.Abort(err) }

// Sum64 returns the digest of everything written so far.
func (h *Hashing) Sum64() uint64 { return h.h.Sum64() }
