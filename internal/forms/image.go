package forms

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxAvatarBytes caps profile image uploads.
const MaxAvatarBytes = 5 * 1024 * 1024

var (
	ErrImageType = errors.New("Only JPG/PNG allowed")
	ErrImageSize = errors.New("Max 5MB allowed")
	ErrNotImage  = errors.New("file is not an image")
)

// CheckAvatar accepts PNG or JPEG files up to MaxAvatarBytes, judged by
// content rather than extension. It returns the detected MIME type.
func CheckAvatar(path string) (string, error) {
	m, info, err := detect(path)
	if err != nil {
		return "", err
	}
	if !m.Is("image/png") && !m.Is("image/jpeg") {
		return m.String(), ErrImageType
	}
	if info.Size() > MaxAvatarBytes {
		return m.String(), ErrImageSize
	}
	return m.String(), nil
}

// CheckBookingImage accepts any image.
func CheckBookingImage(path string) (string, error) {
	m, _, err := detect(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(m.String(), "image/") {
		return m.String(), ErrNotImage
	}
	return m.String(), nil
}

func detect(path string) (*mimetype.MIME, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("forms: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("forms: %s is a directory", path)
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("forms: %w", err)
	}
	return m, info, nil
}
