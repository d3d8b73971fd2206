//go:build !linux

package conn

import "net"

// tuneWatermarks is a no-op off Linux: golang.org/x/sys/unix's socket
// option constants used by tcp_linux.go aren't available, and net.TCPConn
// doesn't expose a portable equivalent.
func tuneWatermarks(*net.TCPConn, int, int) error { return nil }
