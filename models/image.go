package models

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"bitbucket.org/sxnics/sxnics_backend/config"
	"bitbucket.org/sxnics/sxnics_backend/utils"
	"github.com/disintegration/imaging"
)

const MaxImageSizeBytes = 5 * 1024 * 1024
const MaxAudioSizeBytes = 200 * 1024 * 1024

// admin uploads come straight from phone cameras; cap the stored width
const maxStoredImageWidth = 1600

// normalizeImage re-encodes an uploaded image, downscaling anything wider
// than maxStoredImageWidth. Formats imaging cannot decode pass through
// unchanged.
func normalizeImage(file *FormFile) ([]byte, string, error) {

	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return file.Data, contentType, nil
	}

	if img.Bounds().Dx() > maxStoredImageWidth {
		img = imaging.Resize(img, maxStoredImageWidth, 0, imaging.Lanczos)
	}

	format, contentType := encodingFor(file.Filename)
	var buf bytes.Buffer
	if err := encodeImage(&buf, img, format); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), contentType, nil
}

func encodingFor(filename string) (imaging.Format, string) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return imaging.PNG, "image/png"
	case ".gif":
		return imaging.GIF, "image/gif"
	default:
		return imaging.JPEG, "image/jpeg"
	}
}

func encodeImage(buf *bytes.Buffer, img image.Image, format imaging.Format) error {
	if format == imaging.JPEG {
		return imaging.Encode(buf, img, format, imaging.JPEGQuality(85))
	}
	return imaging.Encode(buf, img, format)
}

// uploadEntityImage stores an uploaded image under dir and returns its public
// locator. Used by the single-image entities (artists, episodes, releases,
// events); shop item color images go through uploadColorImage instead.
func uploadEntityImage(ctx context.Context, storage utils.ObjectStorage, dir string, file *FormFile) (string, error) {

	data, contentType, err := normalizeImage(file)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	objectKey := fmt.Sprintf("%s/%s%s", strings.Trim(dir, "/"), utils.GenerateUniqueFilename(), ext)

	return storage.Upload(ctx, objectKey, data, contentType)
}

// removeStoredObject deletes by public locator, best effort. Returns a
// warning string instead of an error; callers decide whether to surface it.
func removeStoredObject(ctx context.Context, storage utils.ObjectStorage, url string) string {
	if url == "" {
		return ""
	}
	objectKey := utils.ExtractObjectKeyFromURL(url)
	if objectKey == "" {
		return fmt.Sprintf("cannot resolve object key for %s, skipping delete", url)
	}
	if err := storage.Remove(ctx, objectKey); err != nil {
		config.LogError(config.GetLogger(), "image.go", "removeStoredObject", "storage.Remove", objectKey, err)
		return fmt.Sprintf("failed to delete object %s", objectKey)
	}
	return ""
}
