package wire_test

import (
	"testing"

	"github.com/fastdfs-go/fastdfs/wire"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := wire.Header{Length: 1234567, Command: wire.StorageUpload, Status: wire.StatusOK}
	enc := h.Encode()
	got, err := wire.DecodeHeader(enc[:])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, h)
	}
}

func TestHeaderZeroLengthStillDecodes(t *testing.T) {
	h := wire.Header{Length: 0, Command: wire.StorageDelete, Status: wire.StatusOK}
	enc := h.Encode()
	got, err := wire.DecodeHeader(enc[:])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if got.Length != 0 {
		t.Fatalf("Length = %d, want 0", got.Length)
	}
}

func TestDecodeHeaderShortBuffer(t *testing.T) {
	if _, err := wire.DecodeHeader(make([]byte, wire.HeaderLen-1)); err == nil {
		t.Fatal("expected error on short header buffer")
	}
}
