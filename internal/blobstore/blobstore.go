// Package blobstore persists uploaded images and hands back the public URL
// that recipe and user rows reference.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"cookconnect/internal/config"
	"cookconnect/internal/models"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultUploadDir       = "./uploads"
	DefaultMaxUploadSizeMB = 10
	WebPQuality            = 75
	// MaxDimension bounds the longest side of a stored image.
	MaxDimension = 1600
	// MaxPixels bounds width*height before decoding allocates the pixel buffer.
	MaxPixels = 40_000_000
	// PublicPrefix is the route the HTTP server serves stored blobs under.
	PublicPrefix = "/uploads/"
)

// ErrNotOwned is returned by Delete for URLs this store did not issue.
var ErrNotOwned = errors.New("blob not owned by this store")

// Store persists image bytes and returns their public URL.
type Store interface {
	Store(ctx context.Context, data []byte, contentHint string) (string, error)
	Delete(ctx context.Context, url string) error
}

// DiskStore normalizes images to WebP and writes them under a local directory.
type DiskStore struct {
	dir          string
	publicBase   string
	maxSizeBytes int64
}

// NewDiskStore builds a DiskStore from config, falling back to defaults.
func NewDiskStore(cfg *config.Config) *DiskStore {
	dir := DefaultUploadDir
	maxMB := DefaultMaxUploadSizeMB
	base := ""
	if cfg != nil {
		if cfg.UploadDir != "" {
			dir = cfg.UploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxMB = cfg.ImageMaxUploadSizeMB
		}
		base = strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	return &DiskStore{
		dir:          dir,
		publicBase:   base,
		maxSizeBytes: int64(maxMB) * 1024 * 1024,
	}
}

// Dir is the directory blobs are written to.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Store validates data as an image, downsizes it to MaxDimension and writes
// it as WebP under a random name. contentHint is the client supplied MIME
// type; when present it must agree with the sniffed type.
func (s *DiskStore) Store(ctx context.Context, data []byte, contentHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", models.NewValidationError("Empty image upload")
	}
	if int64(len(data)) > s.maxSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(data)
	if !isAllowedImageMIME(detected) {
		return "", models.NewValidationError("Invalid image type")
	}
	if hint := normalizeContentType(contentHint); strings.HasPrefix(hint, "image/") && !sameImageType(hint, detected) {
		return "", models.NewValidationError("Image content type mismatch")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", models.NewValidationError(fmt.Sprintf("Image dimensions too large (%dx%d)", cfg.Width, cfg.Height))
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, resizeToFit(decoded, MaxDimension), &webp.Options{Quality: WebPQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString() + ".webp"
	if err := writeBytesToFile(filepath.Join(s.dir, name), buf.Bytes()); err != nil {
		return "", models.NewStorageError(err)
	}
	return s.publicBase + PublicPrefix + name, nil
}

// Delete removes a blob previously returned by Store. Missing files are not
// an error.
func (s *DiskStore) Delete(_ context.Context, url string) error {
	name, ok := s.nameFor(url)
	if !ok {
		return ErrNotOwned
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *DiskStore) nameFor(url string) (string, bool) {
	rest, ok := strings.CutPrefix(url, s.publicBase+PublicPrefix)
	if !ok || rest == "" || strings.ContainsAny(rest, `/\`) || rest == "." || rest == ".." {
		return "", false
	}
	return rest, true
}

func resizeToFit(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return src
	}

	newW, newH := maxSide, maxSide
	if w >= h {
		newH = max(1, h*maxSide/w)
	} else {
		newW = max(1, w*maxSide/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "image/jpg" {
		return "image/jpeg"
	}
	return ct
}

func sameImageType(hint, detected string) bool {
	return normalizeContentType(hint) == normalizeContentType(detected)
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
