package netsocket

import (
	"bytes"
	"testing"

	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte("hello, netsocket")
	frame, err := EncodeFrame(payload)
	require.NoError(t, err)

	got, err := DecodeFrame(bytes.NewReader(frame))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestDecodeFrameRejectsBadMagic(t *testing.T) {
	frame, _ := EncodeFrame([]byte("x"))
	frame[0] ^= 0xFF

	_, err := DecodeFrame(bytes.NewReader(frame))
	require.ErrorIs(t, err, kerr.New(kerr.InvalidData))
}

func TestDecodeFrameRejectsBadChecksum(t *testing.T) {
	frame, _ := EncodeFrame([]byte("hello"))
	frame[len(frame)-8] ^= 0xFF // corrupt the crc32 field

	_, err := DecodeFrame(bytes.NewReader(frame))
	require.ErrorIs(t, err, kerr.New(kerr.InvalidData))
}

func TestEncodeFrameRejectsOversize(t *testing.T) {
	_, err := EncodeFrame(make([]byte, frameSizeLimit+1))
	require.ErrorIs(t, err, kerr.New(kerr.BufferOverflow))
}

func TestCompressRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("netsocket-payload"), 64)
	compressed, err := CompressPayload(payload, 5)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(payload))

	decompressed, err := DecompressPayload(compressed)
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
}

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator(1000, 0.01, 0)
	id := []byte("msg-1")
	require.False(t, d.Seen(id))
	require.True(t, d.Seen(id))
	require.False(t, d.Seen([]byte("msg-2")))
}
