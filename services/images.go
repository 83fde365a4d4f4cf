package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/lborres/reisetagebuch/core"
	"github.com/lborres/reisetagebuch/pkg/crypto"
)

// ImageUploader moves inline data-URL photos into object storage.
// A nil *ImageUploader, or one without storage, keeps images untouched.
type ImageUploader struct {
	store  core.ImageStorage
	ids    *crypto.NanoID
	logger *slog.Logger
}

func NewImageUploader(store core.ImageStorage, logger *slog.Logger) *ImageUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageUploader{store: store, ids: crypto.MustNanoID(), logger: logger}
}

// Normalize uploads every data:<mime>;base64,<payload> image under prefix and
// replaces it with the returned URL. Other entries are kept as they are.
func (u *ImageUploader) Normalize(ctx context.Context, prefix string, images []string) ([]string, error) {
	out := make([]string, 0, len(images))
	if u == nil || u.store == nil {
		return append(out, images...), nil
	}

	for i, img := range images {
		if !strings.HasPrefix(img, "data:") {
			out = append(out, img)
			continue
		}

		contentType, data, err := decodeDataURL(img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}

		key, err := u.objectKey(prefix, contentType)
		if err != nil {
			return nil, err
		}

		url, err := u.store.PutImage(ctx, key, contentType, data)
		if err != nil {
			return nil, fmt.Errorf("upload image %d: %w", i, err)
		}
		u.logger.Debug("image uploaded", slog.String("key", key), slog.Int("bytes", len(data)))
		out = append(out, url)
	}
	return out, nil
}

func (u *ImageUploader) objectKey(prefix, contentType string) (string, error) {
	id, err := u.ids.Generate()
	if err != nil {
		return "", fmt.Errorf("generate image key: %w", err)
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return strings.Trim(prefix, "/") + "/" + id + ext, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// decodeDataURL parses data:<mime>;base64,<payload>.
func decodeDataURL(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", core.ErrInvalidImage)
	}

	contentType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return "", nil, fmt.Errorf("%w: only base64 data URLs are supported", core.ErrInvalidImage)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("%w: content type %q", core.ErrInvalidImage, contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrInvalidImage, err)
	}
	return contentType, data, nil
}
