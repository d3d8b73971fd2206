package fastdfs_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fastdfs-go/fastdfs/internal/fakeserver"
	"github.com/fastdfs-go/fastdfs/wire"
)

func fileInfoBody(size uint64, crc32 uint32, ts uint64) []byte {
	b := make([]byte, wire.LenFieldSize+4+wire.LenFieldSize)
	b[7] = byte(size)
	b[11] = byte(crc32)
	b[19] = byte(ts)
	return b
}

func TestAppendModifyTruncateDeleteRoundTrip(t *testing.T) {
	storage, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer storage.Close()

	var gotAppend, gotModify []byte
	var gotTruncate bool
	var gotDelete bool
	storage.SetHandler(wire.StorageAppend, func(body []byte) fakeserver.Response {
		gotAppend = append([]byte(nil), body...)
		return fakeserver.Response{Status: wire.StatusOK}
	})
	storage.SetHandler(wire.StorageModify, func(body []byte) fakeserver.Response {
		gotModify = append([]byte(nil), body...)
		return fakeserver.Response{Status: wire.StatusOK}
	})
	storage.SetHandler(wire.StorageTruncate, func([]byte) fakeserver.Response {
		gotTruncate = true
		return fakeserver.Response{Status: wire.StatusOK}
	})
	storage.SetHandler(wire.StorageDelete, func([]byte) fakeserver.Response {
		gotDelete = true
		return fakeserver.Response{Status: wire.StatusOK}
	})

	tracker, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer tracker.Close()
	tracker.SetHandler(wire.TrackerQueryUpdate, func([]byte) fakeserver.Response {
		return fakeserver.Response{Status: wire.StatusOK, Body: storageInfoBody(t, "group1", storage.Addr(), 0, false)}
	})

	c := newTestClient(t, tracker.Addr())
	ctx := context.Background()
	const fileID = "M00/00/00/file.bin"

	if err := c.Append(ctx, "group1", fileID, bytes.NewReader([]byte("more")), 4); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if gotAppend == nil {
		t.Fatal("append handler was never invoked")
	}

	if err := c.Modify(ctx, "group1", fileID, 10, bytes.NewReader([]byte("patch")), 5); err != nil {
		t.Fatalf("Modify: %v", err)
	}
	if gotModify == nil {
		t.Fatal("modify handler was never invoked")
	}

	if err := c.Truncate(ctx, "group1", fileID, 100); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if !gotTruncate {
		t.Fatal("truncate handler was never invoked")
	}

	if err := c.Delete(ctx, "group1", fileID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !gotDelete {
		t.Fatal("delete handler was never invoked")
	}
}

func TestSetMetaGetMetaQueryFileInfo(t *testing.T) {
	storage, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer storage.Close()

	storage.SetHandler(wire.StorageSetMeta, func([]byte) fakeserver.Response {
		return fakeserver.Response{Status: wire.StatusOK}
	})
	storage.SetHandler(wire.StorageGetMeta, func([]byte) fakeserver.Response {
		return fakeserver.Response{Status: wire.StatusOK, Body: wire.EncodeMetadata(map[string]string{"width": "100"})}
	})
	storage.SetHandler(wire.StorageQueryFileInfo, func([]byte) fakeserver.Response {
		return fakeserver.Response{Status: wire.StatusOK, Body: fileInfoBody(42, 7, 99)}
	})

	tracker, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer tracker.Close()
	tracker.SetHandler(wire.TrackerQueryUpdate, func([]byte) fakeserver.Response {
		return fakeserver.Response{Status: wire.StatusOK, Body: storageInfoBody(t, "group1", storage.Addr(), 0, false)}
	})

	c := newTestClient(t, tracker.Addr())
	ctx := context.Background()
	const fileID = "M00/00/00/file.bin"

	if err := c.SetMeta(ctx, "group1", fileID, map[string]string{"width": "100"}, true); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}

	meta, err := c.GetMeta(ctx, "group1", fileID)
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if meta["width"] != "100" {
		t.Fatalf("meta = %v, want width=100", meta)
	}

	info, err := c.QueryFileInfo(ctx, "group1", fileID)
	if err != nil {
		t.Fatalf("QueryFileInfo: %v", err)
	}
	if info.Size != 42 || info.CRC32 != 7 || info.CreateTimestamp != 99 {
		t.Fatalf("FileInfo = %+v", info)
	}
}

func TestUploadSlave(t *testing.T) {
	storage, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer storage.Close()
	storage.SetHandler(wire.StorageUploadSlave, func(body []byte) fakeserver.Response {
		resp := make([]byte, wire.GroupNameLen+9)
		copy(resp, "group1")
		copy(resp[wire.GroupNameLen:], "thumb.jpg")
		return fakeserver.Response{Status: wire.StatusOK, Body: resp}
	})

	tracker, err := fakeserver.New(nil)
	if err != nil {
		t.Fatalf("fakeserver.New: %v", err)
	}
	defer tracker.Close()
	tracker.SetHandler(wire.TrackerQueryUpdate, func([]byte) fakeserver.Response {
		return fakeserver.Response{Status: wire.StatusOK, Body: storageInfoBody(t, "group1", storage.Addr(), 0, false)}
	})

	c := newTestClient(t, tracker.Addr())
	res, err := c.UploadSlave(context.Background(), "group1", "M00/00/00/master.jpg", "_thumb", "jpg", bytes.NewReader([]byte("thumbdata")), 9)
	if err != nil {
		t.Fatalf("UploadSlave: %v", err)
	}
	if res.FileID != "thumb.jpg" {
		t.Fatalf("FileID = %q, want thumb.jpg", res.FileID)
	}
}
