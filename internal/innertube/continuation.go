package innertube

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrBadContinuationPage rejects non-positive page numbers.
var ErrBadContinuationPage = errors.New("continuation page must be greater than zero")

// Playlist continuations are hand-assembled protobuf messages, matching the
// tokens the web client sends. Each page covers 100 entries.
const playlistPageSize = 100

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeField(buf *bytes.Buffer, field uint64, wireType uint64) {
	writeUvarint(buf, field<<3|wireType)
}

func writeVarintField(buf *bytes.Buffer, field, v uint64) {
	writeField(buf, field, 0)
	writeUvarint(buf, v)
}

func writeBytesField(buf *bytes.Buffer, field uint64, b []byte) {
	writeField(buf, field, 2)
	writeUvarint(buf, uint64(len(b)))
	buf.Write(b)
}

// GeneratePlaylistContinuation builds the opaque browse continuation token
// for the given playlist page (1-based).
func GeneratePlaylistContinuation(playlistID string, page int) (string, error) {
	if page < 1 {
		return "", ErrBadContinuationPage
	}
	id := playlistID
	if strings.HasPrefix(id, "UC") {
		id = "UU" + strings.TrimPrefix(id, "UC")
	}
	index := uint64(page-1) * playlistPageSize

	var offset bytes.Buffer
	writeVarintField(&offset, 1, index)
	offsetToken := "PT:" + base64.URLEncoding.EncodeToString(offset.Bytes())

	var marker bytes.Buffer
	writeVarintField(&marker, 1, 0)

	var inner bytes.Buffer
	writeVarintField(&inner, 1, 1)
	writeBytesField(&inner, 15, []byte(offsetToken))
	writeBytesField(&inner, 104, marker.Bytes())

	var payload bytes.Buffer
	writeBytesField(&payload, 2, []byte("VL"+id))
	writeBytesField(&payload, 3, []byte(base64.URLEncoding.EncodeToString(inner.Bytes())))
	writeBytesField(&payload, 35, []byte(id))

	var outer bytes.Buffer
	writeBytesField(&outer, 80226972, payload.Bytes())

	return url.QueryEscape(base64.URLEncoding.EncodeToString(outer.Bytes())), nil
}

// DecodePlaylistContinuation recovers the playlist id and start index from a
// token produced by GeneratePlaylistContinuation. Used by tests and for
// diagnostics; Innertube itself treats the token as opaque.
func DecodePlaylistContinuation(token string) (string, uint64, error) {
	unescaped, err := url.QueryUnescape(token)
	if err != nil {
		return "", 0, err
	}
	raw, err := base64.URLEncoding.DecodeString(unescaped)
	if err != nil {
		return "", 0, err
	}
	payload, err := readBytesField(raw, 80226972)
	if err != nil {
		return "", 0, err
	}
	plid, err := readBytesField(payload, 2)
	if err != nil {
		return "", 0, err
	}
	innerB64, err := readBytesField(payload, 3)
	if err != nil {
		return "", 0, err
	}
	inner, err := base64.URLEncoding.DecodeString(string(innerB64))
	if err != nil {
		return "", 0, err
	}
	offsetToken, err := readBytesField(inner, 15)
	if err != nil {
		return "", 0, err
	}
	encoded := strings.TrimPrefix(string(offsetToken), "PT:")
	offsetRaw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return "", 0, err
	}
	index, err := readVarintField(offsetRaw, 1)
	if err != nil {
		return "", 0, err
	}
	return strings.TrimPrefix(string(plid), "VL"), index, nil
}

func readBytesField(raw []byte, field uint64) ([]byte, error) {
	for pos := 0; pos < len(raw); {
		tag, n := binary.Uvarint(raw[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("bad tag at offset %d", pos)
		}
		pos += n
		switch tag & 7 {
		case 0:
			_, n := binary.Uvarint(raw[pos:])
			if n <= 0 {
				return nil, fmt.Errorf("bad varint at offset %d", pos)
			}
			pos += n
		case 2:
			length, n := binary.Uvarint(raw[pos:])
			if n <= 0 || pos+n+int(length) > len(raw) {
				return nil, fmt.Errorf("bad length at offset %d", pos)
			}
			pos += n
			if tag>>3 == field {
				return raw[pos : pos+int(length)], nil
			}
			pos += int(length)
		default:
			return nil, fmt.Errorf("unsupported wire type %d", tag&7)
		}
	}
	return nil, fmt.Errorf("field %d not found", field)
}

func readVarintField(raw []byte, field uint64) (uint64, error) {
	for pos := 0; pos < len(raw); {
		tag, n := binary.Uvarint(raw[pos:])
		if n <= 0 {
			return 0, fmt.Errorf("bad tag at offset %d", pos)
		}
		pos += n
		switch tag & 7 {
		case 0:
			v, n := binary.Uvarint(raw[pos:])
			if n <= 0 {
				return 0, fmt.Errorf("bad varint at offset %d", pos)
			}
			pos += n
			if tag>>3 == field {
				return v, nil
			}
		case 2:
			length, n := binary.Uvarint(raw[pos:])
			if n <= 0 || pos+n+int(length) > len(raw) {
				return 0, fmt.Errorf("bad length at offset %d", pos)
			}
			pos += n + int(length)
		default:
			return 0, fmt.Errorf("unsupported wire type %d", tag&7)
		}
	}
	return 0, fmt.Errorf("field %d not found", field)
}
