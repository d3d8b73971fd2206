package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/fastdfs-go/fastdfs/xerr"
)

// UploadHeader is the fixed-field prefix of a STORAGE_UPLOAD /
// STORAGE_UPLOAD_APPENDER_FILE request body; the streamed file content
// follows it and is NOT part of this encoding (the Connection appends it —
// see conn.Exchange).
type UploadHeader struct {
	StoreIndex int8
	FileSize   uint64
	FileExt    string // e.g. "jpg"; zero-padded to FileExtNameLen, longer is an Encode error
}

func (u UploadHeader) Encode() ([]byte, error) {
	if len(u.FileExt) > FileExtNameLen {
		return nil, fmt.Errorf("fastdfs/wire: ext %q exceeds %d bytes", u.FileExt, FileExtNameLen)
	}
	b := make([]byte, 1+LenFieldSize+FileExtNameLen)
	b[0] = byte(u.StoreIndex)
	binary.BigEndian.PutUint64(b[1:1+LenFieldSize], u.FileSize)
	if err := putFixed(b[1+LenFieldSize:], u.FileExt, FileExtNameLen); err != nil {
		return nil, err
	}
	return b, nil
}

// UploadSlaveHeader is STORAGE_UPLOAD_SLAVE's fixed-field prefix.
type UploadSlaveHeader struct {
	FileSize       uint64
	Prefix         string // e.g. "_thumb"
	FileExt        string
	MasterFileName string
}

func (u UploadSlaveHeader) Encode() ([]byte, error) {
	if len(u.FileExt) > FileExtNameLen {
		return nil, fmt.Errorf("fastdfs/wire: ext %q exceeds %d bytes", u.FileExt, FileExtNameLen)
	}
	masterLen := len(u.MasterFileName)
	b := make([]byte, LenFieldSize+LenFieldSize+GroupNameLen+FileExtNameLen+masterLen)
	off := 0
	binary.BigEndian.PutUint64(b[off:off+LenFieldSize], uint64(masterLen))
	off += LenFieldSize
	binary.BigEndian.PutUint64(b[off:off+LenFieldSize], u.FileSize)
	off += LenFieldSize
	if err := putFixed(b[off:off+GroupNameLen], u.Prefix, GroupNameLen); err != nil {
		return nil, err
	}
	off += GroupNameLen
	if err := putFixed(b[off:off+FileExtNameLen], u.FileExt, FileExtNameLen); err != nil {
		return nil, err
	}
	off += FileExtNameLen
	copy(b[off:], u.MasterFileName)
	return b, nil
}

// UploadResp is the parsed (group, fileId) result common to upload,
// upload-slave and upload-appender.
type UploadResp struct {
	Group  string
	FileID string
}

func DecodeUploadResp(b []byte) (UploadResp, error) {
	if len(b) < GroupNameLen {
		return UploadResp{}, xerr.NewProtocolError("upload response too short", nil)
	}
	return UploadResp{
		Group:  trimFixed(b[0:GroupNameLen]),
		FileID: string(b[GroupNameLen:]),
	}, nil
}

// EncodeGroupFileID builds the common group+fileId body shared by delete,
// get-meta, query-file-info and append's target-file selector.
func EncodeGroupFileID(group, fileID string) ([]byte, error) {
	return encodeGroupAndFileID(group, fileID)
}

// AppendHeader is STORAGE_APPEND's fixed-field prefix (the appended-content
// length, then group+fileId of the file being appended to).
type AppendHeader struct {
	Group        string
	FileID       string
	AppendLength uint64
}

func (a AppendHeader) Encode() ([]byte, error) {
	gf, err := encodeGroupAndFileID(a.Group, a.FileID)
	if err != nil {
		return nil, err
	}
	b := make([]byte, LenFieldSize+len(gf))
	binary.BigEndian.PutUint64(b[:LenFieldSize], a.AppendLength)
	copy(b[LenFieldSize:], gf)
	return b, nil
}

// ModifyHeader is STORAGE_MODIFY_FILE's fixed-field prefix.
type ModifyHeader struct {
	Group      string
	FileID     string
	Offset     uint64
	WriteBytes uint64
}

func (m ModifyHeader) Encode() ([]byte, error) {
	gf, err := encodeGroupAndFileID(m.Group, m.FileID)
	if err != nil {
		return nil, err
	}
	b := make([]byte, 2*LenFieldSize+len(gf))
	binary.BigEndian.PutUint64(b[0:LenFieldSize], m.Offset)
	binary.BigEndian.PutUint64(b[LenFieldSize:2*LenFieldSize], m.WriteBytes)
	copy(b[2*LenFieldSize:], gf)
	return b, nil
}

// TruncateHeader is STORAGE_TRUNCATE_FILE's full body (no stream follows).
type TruncateHeader struct {
	Group       string
	FileID      string
	TruncatedTo uint64
}

func (t TruncateHeader) Encode() ([]byte, error) {
	gf, err := encodeGroupAndFileID(t.Group, t.FileID)
	if err != nil {
		return nil, err
	}
	b := make([]byte, LenFieldSize+len(gf))
	binary.BigEndian.PutUint64(b[:LenFieldSize], t.TruncatedTo)
	copy(b[LenFieldSize:], gf)
	return b, nil
}

// DownloadHeader is STORAGE_DOWNLOAD's full body (no stream follows; the
// response body itself IS the file payload and is never decoded as
// structured fields).
type DownloadHeader struct {
	Group  string
	FileID string
	Offset uint64
	Length uint64 // 0 = to EOF

	// Token/TS carry the optional anti-leech pair (SPEC_FULL.md §C.1);
	// Token == "" omits them entirely, matching a server with the feature
	// disabled.
	Token string
	TS    int64
}

const tokenFieldLen = 32 // hex-encoded md5

func (d DownloadHeader) Encode() ([]byte, error) {
	gf, err := encodeGroupAndFileID(d.Group, d.FileID)
	if err != nil {
		return nil, err
	}
	extra := 0
	if d.Token != "" {
		extra = LenFieldSize + tokenFieldLen
	}
	b := make([]byte, 2*LenFieldSize+extra+len(gf))
	binary.BigEndian.PutUint64(b[0:LenFieldSize], d.Offset)
	binary.BigEndian.PutUint64(b[LenFieldSize:2*LenFieldSize], d.Length)
	off := 2 * LenFieldSize
	if d.Token != "" {
		binary.BigEndian.PutUint64(b[off:off+LenFieldSize], uint64(d.TS))
		off += LenFieldSize
		if err := putFixed(b[off:off+tokenFieldLen], d.Token, tokenFieldLen); err != nil {
			return nil, err
		}
		off += tokenFieldLen
	}
	copy(b[off:], gf)
	return b, nil
}

// FileInfo is STORAGE_QUERY_FILE_INFO's response.
type FileInfo struct {
	Size            uint64
	CRC32           uint32
	CreateTimestamp uint64
}

const fileInfoRespLen = LenFieldSize + 4 + LenFieldSize

func DecodeFileInfoResp(b []byte) (FileInfo, error) {
	if len(b) != fileInfoRespLen {
		return FileInfo{}, xerr.NewProtocolError(
			fmt.Sprintf("query-file-info response len %d != %d", len(b), fileInfoRespLen), nil)
	}
	return FileInfo{
		Size:            binary.BigEndian.Uint64(b[0:8]),
		CRC32:           binary.BigEndian.Uint32(b[8:12]),
		CreateTimestamp: binary.BigEndian.Uint64(b[12:20]),
	}, nil
}

//
// metadata (STORAGE_SET_METADATA / STORAGE_GET_METADATA)
//

// Separators for the flattened metadata blob: fieldSep divides a key from
// its value, recordSep divides one pair from the next.
const (
	metaFieldSep  = '\x02'
	metaRecordSep = '\x01'
)

// SetMetaHeader is STORAGE_SET_METADATA's fixed-field prefix; the encoded
// metadata blob (see EncodeMetadata) follows as the rest of the body.
type SetMetaHeader struct {
	Group    string
	FileID   string
	Flag     byte // SetMetaFlagOverwrite or SetMetaFlagMerge
	MetaSize uint64
}

func (s SetMetaHeader) Encode() ([]byte, error) {
	gf, err := encodeGroupAndFileID(s.Group, s.FileID)
	if err != nil {
		return nil, err
	}
	b := make([]byte, LenFieldSize+1+len(gf))
	binary.BigEndian.PutUint64(b[0:LenFieldSize], s.MetaSize)
	b[LenFieldSize] = s.Flag
	copy(b[LenFieldSize+1:], gf)
	return b, nil
}

// EncodeMetadata flattens a key/value map into the wire blob; pairs come
// out in Go's map iteration order, which is not defined.
func EncodeMetadata(kv map[string]string) []byte {
	var b []byte
	first := true
	for k, v := range kv {
		if !first {
			b = append(b, metaRecordSep)
		}
		first = false
		b = append(b, k...)
		b = append(b, metaFieldSep)
		b = append(b, v...)
	}
	return b
}

// DecodeMetadata parses STORAGE_GET_METADATA's response body.
func DecodeMetadata(b []byte) map[string]string {
	out := map[string]string{}
	if len(b) == 0 {
		return out
	}
	for _, rec := range splitByte(b, metaRecordSep) {
		parts := splitByteN(rec, metaFieldSep, 2)
		if len(parts) == 2 {
			out[string(parts[0])] = string(parts[1])
		}
	}
	return out
}

func splitByte(b []byte, sep byte) [][]byte { return splitByteN(b, sep, -1) }

func splitByteN(b []byte, sep byte, n int) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i < len(b); i++ {
		if n > 0 && len(out) == n-1 {
			break
		}
		if b[i] == sep {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	out = append(out, b[start:])
	return out
}
