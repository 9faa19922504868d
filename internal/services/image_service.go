package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
)

type ImageConfig struct {
	Root          string
	ResizeEnabled bool
	PathSanitize  bool
	CacheTTL      time.Duration
}

type ImageService struct {
	cfg  ImageConfig
	root string
}

func NewImageService(cfg ImageConfig) *ImageService {
	root := cfg.Root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &ImageService{cfg: cfg, root: root}
}

// CacheControl is the header value for served images.
func (s *ImageService) CacheControl() string {
	if s.cfg.CacheTTL <= 0 {
		return "no-store"
	}
	return fmt.Sprintf("public, max-age=%d", int64(s.cfg.CacheTTL/time.Second))
}

// GetImage reads filename under the image root. With resizing enabled and width > 0 the image
// is scaled down to width (never up) and re-encoded as JPEG.
func (s *ImageService) GetImage(filename string, width int) ([]byte, string, error) {
	full, err := s.resolve(filename)
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrImageNotFound
	}
	if err != nil {
		// directories and unreadable entries are reported as missing
		return nil, "", ErrImageNotFound
	}

	if s.cfg.ResizeEnabled && width > 0 {
		out, err := resizeJPEG(raw, width)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrImageProcess, err)
		}
		return out, "image/jpeg", nil
	}
	return raw, contentType(full, raw), nil
}

func (s *ImageService) resolve(filename string) (string, error) {
	if !s.cfg.PathSanitize {
		return filepath.Join(s.root, filename), nil
	}
	if filename == "" || strings.ContainsRune(filename, 0) || filepath.IsAbs(filename) {
		return "", ErrAccessDenied
	}
	full := filepath.Join(s.root, filename)
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrAccessDenied
	}
	return full, nil
}

func resizeJPEG(raw []byte, width int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	dst := src
	if b.Dx() > width {
		h := b.Dy() * width / b.Dx()
		if h < 1 {
			h = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Over, nil)
		dst = scaled
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func contentType(name string, raw []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return http.DetectContentType(raw)
}
