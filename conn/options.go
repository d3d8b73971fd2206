package conn

import "time"

// Options configures one Connection; the root fastdfs.Config maps its
// per-pool fields onto this for each Dial.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	TCPNoDelay         bool
	WriteHighWaterMark int
	WriteLowWaterMark  int

	EnableReconnect     bool
	MaxReconnect        int
	ReconnectIntervalMs int

	// ChunkSize bounds how much of a streamed payload is buffered at once
	// in either direction — spec.md §4.1/§4.2 "must never buffer whole [payload]".
	ChunkSize int
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return 64 * 1024
}
