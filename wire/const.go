// Package wire is the FastDFS codec: header framing plus per-command
// request/response encoding, grounded on the fixed-field layout documented
// in spec.md §3/§4.1/§6. The command surface mirrors the teacher's
// api/apc constant blocks (grouped, one per concern, aligned comments).
package wire

// Field widths, byte-exact per the FastDFS wire protocol.
const (
	HeaderLen      = 10
	GroupNameLen   = 16
	FileExtNameLen = 6
	IPAddrLen      = 15 // + 1 null terminator in the 16-byte on-wire field
	IPAddrFieldLen = IPAddrLen + 1
	LenFieldSize   = 8 // FDFS_PROTO_PKG_LEN_SIZE
	FileIDMaxLen   = 128
)

// Command codes (1 byte each).
const (
	StorageUpload        byte = 11
	StorageDelete        byte = 12
	StorageSetMeta       byte = 13
	StorageDownload      byte = 14
	StorageGetMeta       byte = 15
	StorageUploadSlave   byte = 21
	StorageQueryFileInfo byte = 22
	StorageUploadAppend  byte = 24
	StorageAppend        byte = 23
	StorageModify        byte = 34
	StorageTruncate      byte = 36

	TrackerQueryStoreWithoutGroup byte = 101
	TrackerQueryStoreWithGroup    byte = 104
	TrackerQueryFetchOne          byte = 102
	TrackerQueryUpdate            byte = 103
	TrackerListGroups             byte = 91
	TrackerListStorages           byte = 92

	RespGeneric byte = 100
)

// STORAGE_SET_META op flags, carried in the request body byte right after
// the 8-byte metadata-size field (see SetMetaHeader).
const (
	SetMetaFlagOverwrite byte = 'O'
	SetMetaFlagMerge     byte = 'M'
)

// Status byte in the response header; 0 is success.
const StatusOK uint8 = 0
