// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/observability"

	"github.com/chai2010/webp"
	"go.opentelemetry.io/otel/attribute"
	xdraw "golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"
)

const (
	// MaxImageDimension is the longest edge kept after normalization.
	MaxImageDimension = 1440

	// JPEGQuality is the encoder quality for the primary rendition.
	JPEGQuality = 82
	// WebPQuality is the encoder quality for the compact rendition.
	WebPQuality = 70
)

// StoredImage describes a persisted upload.
type StoredImage struct {
	// URL is the public path of the primary (JPEG) rendition.
	URL string
	// WebPURL is the public path of the compact rendition.
	WebPURL string
	Width   int
	Height  int
	Bytes   int64
}

// MediaStore writes normalized post images to local disk and hands back
// public URLs. The serving side is a static mount, so the store only deals
// in files and paths.
type MediaStore struct {
	mediaDir      string
	publicPrefix  string
	maxUploadSize int64
}

// NewMediaStore creates a MediaStore rooted at mediaDir. maxUploadMB caps the
// accepted upload size in megabytes.
func NewMediaStore(mediaDir, publicPrefix string, maxUploadMB int) *MediaStore {
	if publicPrefix == "" {
		publicPrefix = "/media"
	}
	return &MediaStore{
		mediaDir:      mediaDir,
		publicPrefix:  strings.TrimRight(publicPrefix, "/"),
		maxUploadSize: int64(maxUploadMB) * 1024 * 1024,
	}
}

// Save validates, normalizes and persists an uploaded image for the given
// user. The stored name is derived from the uploader and the upload instant
// so repeated submissions never collide.
func (m *MediaStore) Save(ctx context.Context, userID uint, data []byte, declaredType string) (*StoredImage, error) {
	span, ctx := observability.NewSpan(ctx, "media.save")
	defer span.End()
	span.AddAttributes(
		attribute.Int("media.bytes_in", len(data)),
		attribute.Int64("media.user_id", int64(userID)),
	)

	if len(data) == 0 {
		return nil, models.NewValidationError("Image file is empty")
	}
	if m.maxUploadSize > 0 && int64(len(data)) > m.maxUploadSize {
		return nil, models.NewValidationError(
			fmt.Sprintf("Image exceeds maximum size of %d MB", m.maxUploadSize/(1024*1024)))
	}

	detected := http.DetectContentType(data)
	if !isAllowedImageMIME(detected) {
		return nil, models.NewValidationError("Unsupported image type")
	}
	if declaredType != "" && !isMatchingContentType(declaredType, detected) {
		return nil, models.NewValidationError("Image content does not match declared type")
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, models.NewValidationError("Image could not be decoded")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewValidationError("Unsupported image format")
	}

	normalized := resizeToFit(src, MaxImageDimension, MaxImageDimension)
	nb := normalized.Bounds()

	jpgBytes, err := encodeJPEG(normalized, JPEGQuality)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}
	webpBytes, err := encodeWebP(normalized, WebPQuality)
	if err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}

	base := fmt.Sprintf("%d-%d", userID, time.Now().UnixMilli())
	jpgName := base + ".jpg"
	webpName := base + ".webp"

	jpgPath := filepath.Join(m.mediaDir, jpgName)
	if err := writeBytesToFile(jpgPath, jpgBytes); err != nil {
		span.SetError(err)
		middleware.MediaUploads.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(m.mediaDir, webpName), webpBytes); err != nil {
		// Keep the primary rendition; the compact one is best-effort.
		middleware.Logger.WarnContext(ctx, "webp rendition write failed", "error", err)
		webpName = ""
	}

	middleware.MediaUploads.WithLabelValues("ok").Inc()
	span.AddAttributes(attribute.Int("media.bytes_out", len(jpgBytes)))

	stored := &StoredImage{
		URL:    m.publicPrefix + "/" + jpgName,
		Width:  nb.Dx(),
		Height: nb.Dy(),
		Bytes:  int64(len(jpgBytes)),
	}
	if webpName != "" {
		stored.WebPURL = m.publicPrefix + "/" + webpName
	}
	return stored, nil
}

// Remove deletes the stored renditions behind a public URL. Missing files are
// not an error; deletion is best-effort cleanup after a post is removed.
func (m *MediaStore) Remove(ctx context.Context, publicURL string) {
	name := strings.TrimPrefix(publicURL, m.publicPrefix+"/")
	if name == "" || name == publicURL || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return
	}
	_ = os.Remove(filepath.Join(m.mediaDir, name))
	if ext := filepath.Ext(name); ext == ".jpg" {
		_ = os.Remove(filepath.Join(m.mediaDir, strings.TrimSuffix(name, ext)+".webp"))
	}
	middleware.Logger.DebugContext(ctx, "media removed", "name", name)
}

// Dir returns the on-disk root of the store, for the static mount.
func (m *MediaStore) Dir() string {
	return m.mediaDir
}

// PublicPrefix returns the URL prefix the store issues links under.
func (m *MediaStore) PublicPrefix() string {
	return m.publicPrefix
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
