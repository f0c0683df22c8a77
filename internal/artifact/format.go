// Package artifact persists trained indexes as single-file artifacts. A file
// holds a fixed-size header followed by a zstd-compressed CBOR record of the
// payload.
package artifact

import (
	"encoding/binary"
	"fmt"
	"time"
)

// MagicBytes identifies a valid .fqx artifact file ("FQIX").
const (
	MagicBytes    uint32 = 0x46514958
	FormatVersion uint16 = 1
	HeaderSize    int    = 32
	FileExtension        = ".fqx"
)

// FlagZstd marks a zstd-compressed body. It is always set by this writer.
const FlagZstd uint16 = 1 << 0

// Header is the 32-byte header written at the start of every artifact.
type Header struct {
	Magic        uint32
	Version      uint16
	Flags        uint16
	BodyLen      uint64
	Checksum     uint32
	ExampleCount uint32
	CreatedAt    int64
}

func (h Header) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], h.BodyLen)
	binary.LittleEndian.PutUint32(buf[16:20], h.Checksum)
	binary.LittleEndian.PutUint32(buf[20:24], h.ExampleCount)
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.CreatedAt))
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("header truncated: %d bytes", len(buf))
	}
	h := Header{
		Magic:        binary.LittleEndian.Uint32(buf[0:4]),
		Version:      binary.LittleEndian.Uint16(buf[4:6]),
		Flags:        binary.LittleEndian.Uint16(buf[6:8]),
		BodyLen:      binary.LittleEndian.Uint64(buf[8:16]),
		Checksum:     binary.LittleEndian.Uint32(buf[16:20]),
		ExampleCount: binary.LittleEndian.Uint32(buf[20:24]),
		CreatedAt:    int64(binary.LittleEndian.Uint64(buf[24:32])),
	}
	if h.Magic != MagicBytes {
		return Header{}, fmt.Errorf("bad magic bytes %x", h.Magic)
	}
	if h.Version != FormatVersion {
		return Header{}, fmt.Errorf("unsupported format version %d", h.Version)
	}
	return h, nil
}

// Created returns the header timestamp.
func (h Header) Created() time.Time {
	return time.Unix(h.CreatedAt, 0)
}
