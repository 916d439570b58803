package media

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal sniffable headers per kind.
var (
	pngBytes  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 16)...)
	mp4Bytes  = []byte("\x00\x00\x00\x20ftypisom\x00\x00\x02\x00isomiso2avc1mp41")
	mp3Bytes  = append([]byte("ID3"), bytes.Repeat([]byte{0}, 16)...)
	textBytes = []byte("just some text, not media")
)

func TestCheckAcceptsMatchingKinds(t *testing.T) {
	assert.NoError(t, Check(KindPhoto, pngBytes))
	assert.NoError(t, Check(KindVideo, mp4Bytes))
	assert.NoError(t, Check(KindAudio, mp3Bytes))
}

func TestCheckRejectsWrongType(t *testing.T) {
	err := Check(KindPhoto, textBytes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrongType)

	// A photo is not audio either.
	assert.ErrorIs(t, Check(KindAudio, pngBytes), ErrWrongType)
}

func TestCheckRejectsOversize(t *testing.T) {
	big := make([]byte, MaxPhotoSize+1)
	copy(big, pngBytes)

	err := Check(KindPhoto, big)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooLarge)

	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, int64(len(big)), cerr.Size)
	// The message names the offending size so the user sees why.
	assert.Contains(t, cerr.Error(), "MB")
	assert.Contains(t, cerr.Error(), "photo")
}

func TestSizeLimitsPerKind(t *testing.T) {
	video := make([]byte, MaxPhotoSize+1)
	copy(video, mp4Bytes)
	// Over the photo cap but well under the video cap.
	assert.NoError(t, Check(KindVideo, video))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload, err := Encode(KindPhoto, pngBytes)
	require.NoError(t, err)
	assert.True(t, IsDataURL(payload))

	mime, data, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, pngBytes, data)
}

func TestEncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o600))

	payload, err := EncodeFile(KindPhoto, path)
	require.NoError(t, err)
	assert.True(t, IsDataURL(payload))

	_, err = EncodeFile(KindPhoto, filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestDecodeRejectsNonDataURL(t *testing.T) {
	_, _, err := Decode("https://example.com/pic.png")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, _, err = Decode("data:image/png,not-base64-marker")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, _, err = Decode("data:image/png;base64,!!!")
	assert.Error(t, err)
}
