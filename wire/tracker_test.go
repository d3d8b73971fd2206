package wire_test

import (
	"testing"

	"github.com/fastdfs-go/fastdfs/wire"
)

func TestQueryStoreRoundTrip(t *testing.T) {
	body, err := wire.EncodeQueryStoreWithGroup("group1")
	if err != nil {
		t.Fatalf("EncodeQueryStoreWithGroup: %v", err)
	}
	if len(body) != wire.GroupNameLen {
		t.Fatalf("body len = %d, want %d", len(body), wire.GroupNameLen)
	}

	resp := make([]byte, wire.GroupNameLen+wire.IPAddrFieldLen+wire.LenFieldSize+1)
	copy(resp, "group1")
	copy(resp[wire.GroupNameLen:], "192.168.1.10")
	resp[len(resp)-1] = 3

	info, err := wire.DecodeQueryStoreResp(resp)
	if err != nil {
		t.Fatalf("DecodeQueryStoreResp: %v", err)
	}
	if info.Group != "group1" {
		t.Errorf("Group = %q, want group1", info.Group)
	}
	if info.IPAddr != "192.168.1.10" {
		t.Errorf("IPAddr = %q, want 192.168.1.10", info.IPAddr)
	}
	if info.StoreIndex != 3 {
		t.Errorf("StoreIndex = %d, want 3", info.StoreIndex)
	}
}

func TestDecodeQueryStoreRespWrongLength(t *testing.T) {
	if _, err := wire.DecodeQueryStoreResp([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error on wrong-length response")
	}
}

func TestEncodeGroupFileIDTooLong(t *testing.T) {
	long := make([]byte, wire.FileIDMaxLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := wire.EncodeGroupFileID("group1", string(long)); err == nil {
		t.Fatal("expected error for oversized fileId")
	}
}

func TestDecodeListGroupsRespRejectsShortRemainder(t *testing.T) {
	if _, err := wire.DecodeListGroupsResp(make([]byte, 3)); err == nil {
		t.Fatal("expected error for misaligned list-groups body")
	}
}
