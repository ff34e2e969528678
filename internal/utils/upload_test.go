package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Magic byte prefixes recognized by http.DetectContentType.
var (
	pngHead  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}
	webpHead = append([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), make([]byte, 8)...)
)

func TestCheckImage(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		head    []byte
		wantExt string
		wantErr error
	}{
		{"png accepted", 1024, pngHead, ".png", nil},
		{"jpeg accepted", 1024, jpegHead, ".jpg", nil},
		{"webp accepted", 1024, webpHead, ".webp", nil},
		{"exactly at limit", MaxImageBytes, pngHead, ".png", nil},
		{"over the limit", MaxImageBytes + 1, pngHead, "", ErrImageTooLarge},
		{"plain text rejected", 1024, []byte("hello world"), "", ErrUnsupportedImageType},
		{"gif rejected", 1024, []byte("GIF89a\x00\x00"), "", ErrUnsupportedImageType},
		{"empty head rejected", 1024, nil, "", ErrUnsupportedImageType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := CheckImage(tt.size, tt.head)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestCheckImageSizeBeforeType(t *testing.T) {
	// An oversized upload is rejected on size alone, even when the bytes
	// would not sniff as an image either.
	_, err := CheckImage(MaxImageBytes+1, []byte("not an image"))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
