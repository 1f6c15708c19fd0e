package helpers

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	ErrInvalidImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	ErrFileTooLarge = errors.New("file size exceeds maximum limit")
)

type UploadConfig struct {
	MaxSizeBytes     int64
	AllowedMimeTypes []string
	MediaRoot        string
}

var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes: 5 * 1024 * 1024, // 5MB
	AllowedMimeTypes: []string{
		"image/jpeg",
		"image/png",
		"image/gif",
	},
	MediaRoot: "./media",
}

// UploadImage validates that fileHeader holds a decodable image and stores it
// under <MediaRoot>/uploads/<uploadType>/. The returned path is relative to
// MediaRoot and uses forward slashes so it can be joined onto the media URL.
func UploadImage(c *gin.Context, fileHeader *multipart.FileHeader, uploadType, name string, config UploadConfig) (string, error) {
	if fileHeader.Size > config.MaxSizeBytes {
		return "", fmt.Errorf("%w of %d MB", ErrFileTooLarge, config.MaxSizeBytes/(1024*1024))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := ValidateImage(src, config.AllowedMimeTypes); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	relDir := path.Join("uploads", uploadType)
	if err := os.MkdirAll(filepath.Join(config.MediaRoot, filepath.FromSlash(relDir)), os.ModePerm); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s-%s%s", Slugify(name), uuid.New().String(), ext)
	relPath := path.Join(relDir, filename)

	if err := c.SaveUploadedFile(fileHeader, filepath.Join(config.MediaRoot, filepath.FromSlash(relPath))); err != nil {
		return "", err
	}

	return relPath, nil
}

// ValidateImage sniffs the content type and then decodes the image header.
func ValidateImage(src io.ReadSeeker, allowed []string) error {
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return ErrInvalidImage
	}
	if !mimetype.EqualsAny(mtype.String(), allowed...) {
		return ErrInvalidImage
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, _, err := image.DecodeConfig(src); err != nil {
		return ErrInvalidImage
	}
	return nil
}

func DeleteFile(mediaRoot, relPath string) error {
	if relPath == "" {
		return nil
	}
	err := os.Remove(filepath.Join(mediaRoot, filepath.FromSlash(relPath)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MediaURL joins a stored relative path onto the public media prefix.
func MediaURL(baseURL string, relPath *string) *string {
	if relPath == nil || *relPath == "" {
		return nil
	}
	u := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(*relPath, "/")
	return &u
}

func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) && r < unicode.MaxASCII, unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "file"
	}
	return slug
}
