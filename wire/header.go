package wire

import (
	"encoding/binary"

	"github.com/fastdfs-go/fastdfs/xerr"
)

// Header is the fixed 10-byte frame header: 8-byte big-endian body length,
// 1-byte command, 1-byte status. Decode/Encode round-trip exactly — see
// spec.md §8 "Header round-trip" invariant.
type Header struct {
	Length  uint64
	Command byte
	Status  uint8
}

// Encode writes h into a HeaderLen-byte buffer.
func (h Header) Encode() [HeaderLen]byte {
	var b [HeaderLen]byte
	binary.BigEndian.PutUint64(b[0:8], h.Length)
	b[8] = h.Command
	b[9] = h.Status
	return b
}

// DecodeHeader parses exactly HeaderLen bytes; it never errors on a
// well-sized buffer, matching "a response whose declared length is zero
// MUST still be decodable".
func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderLen {
		return Header{}, xerr.NewProtocolError("short header", nil)
	}
	return Header{
		Length:  binary.BigEndian.Uint64(b[0:8]),
		Command: b[8],
		Status:  b[9],
	}, nil
}
