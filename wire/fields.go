package wire

import (
	"bytes"
	"fmt"
)

// putFixed copies the raw bytes of s into a field of exactly n bytes,
// zero-padded, erroring if s is too wide to fit. No charset conversion is
// applied; Config.Charset is not consulted.
func putFixed(dst []byte, s string, n int) error {
	if len(dst) != n {
		return fmt.Errorf("fastdfs/wire: fixed field dst len %d != %d", len(dst), n)
	}
	b := []byte(s)
	if len(b) > n {
		return fmt.Errorf("fastdfs/wire: value %q exceeds fixed width %d", s, n)
	}
	copy(dst, b)
	for i := len(b); i < n; i++ {
		dst[i] = 0
	}
	return nil
}

// trimFixed decodes a fixed-width ASCII/charset field, trimming trailing NULs.
func trimFixed(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return string(b)
	}
	return string(b[:i])
}
