package netsocket

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// Wire framing constants transcribed from original_source's network.h:
// NETMSG_MAGIC / NETMSG_MAGIC_TAIL bracket every frame so a desynced
// stream can be detected, and NETMSG_SIZE_LIMIT caps a single frame's
// payload to guard against a runaway length field.
const (
	frameMagic     uint32 = 941629299
	frameMagicTail uint32 = 2198696884
	frameSizeLimit int    = 1048576

	frameHeaderSize = 4 + 4          // magic + length
	frameTrailerSize = 4 + 4         // crc32 + magic_tail
)

// EncodeFrame wraps payload in the kernel's framed message format:
//
//	[magic u32][length u32][payload][crc32 u32][magic_tail u32]
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) > frameSizeLimit {
		return nil, kerr.New(kerr.BufferOverflow)
	}
	buf := make([]byte, frameHeaderSize+len(payload)+frameTrailerSize)
	binary.LittleEndian.PutUint32(buf[0:4], frameMagic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[8:], payload)
	sum := crc32.ChecksumIEEE(payload)
	binary.LittleEndian.PutUint32(buf[8+len(payload):], sum)
	binary.LittleEndian.PutUint32(buf[8+len(payload)+4:], frameMagicTail)
	return buf, nil
}

// DecodeFrame reads exactly one framed message from r, validating the
// magic numbers, length limit, and checksum. A bad magic number, magic
// tail or checksum returns InvalidData — the same fatal-disconnect
// condition the original treated a bad magic number as. A length over
// the limit is rejected before any payload is read, and a short read
// returns the reader's own error.
func DecodeFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != frameMagic {
		return nil, kerr.New(kerr.InvalidData)
	}
	length := binary.LittleEndian.Uint32(header[4:8])
	if int(length) > frameSizeLimit {
		return nil, kerr.New(kerr.BufferOverflow)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	var trailer [frameTrailerSize]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, err
	}
	sum := binary.LittleEndian.Uint32(trailer[0:4])
	tail := binary.LittleEndian.Uint32(trailer[4:8])
	if tail != frameMagicTail {
		return nil, kerr.New(kerr.InvalidData)
	}
	if sum != crc32.ChecksumIEEE(payload) {
		return nil, kerr.New(kerr.InvalidData)
	}
	return payload, nil
}
