package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MaxImageBytes caps uploaded image size at 5MB. Larger files are rejected
// before a single byte is written to disk.
const MaxImageBytes = 5 << 20

// ErrImageTooLarge is returned when an upload exceeds MaxImageBytes.
var ErrImageTooLarge = errors.New("image exceeds 5MB limit")

// ErrUnsupportedImageType is returned when an upload is not jpeg, png or webp.
var ErrUnsupportedImageType = errors.New("image must be jpeg, png or webp")

// imageExts maps accepted sniffed content types to stored file extensions.
var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// CheckImage validates an upload's size and sniffed content type. head must
// hold the first bytes of the file (512 are enough for detection). Returns
// the file extension to store the image under.
func CheckImage(size int64, head []byte) (string, error) {
	if size > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	ext, ok := imageExts[http.DetectContentType(head)]
	if !ok {
		return "", ErrUnsupportedImageType
	}
	return ext, nil
}

// SaveImage validates and stores an uploaded image under dir with a random
// name, returning the public path ("/uploads/<name>"). The content type is
// sniffed from the file bytes, never trusted from the client header.
func SaveImage(fh *multipart.FileHeader, dir string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	head = head[:n]

	ext, err := CheckImage(fh.Size, head)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.Write(head); err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
