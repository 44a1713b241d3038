// Package storage saves uploaded car images and serves them back under /media.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"seyyar/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
)

var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrUnsupportedContent = errors.New("only JPEG, PNG and WebP images are accepted")
	ErrInvalidObjectName  = errors.New("invalid object name")
	ErrObjectTooLarge     = errors.New("image is too large")
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// BlobStore keeps objects as files under <base>/<bucket>/<name>.
type BlobStore struct {
	fs        afero.Fs
	bucket    string
	publicURL string
	maxBytes  int64
}

// NewBlobStore roots the store at cfg.Storage.BasePath on the local disk.
func NewBlobStore(cfg *config.Config) (*BlobStore, error) {
	if err := os.MkdirAll(cfg.Storage.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	fs := afero.NewBasePathFs(afero.NewOsFs(), cfg.Storage.BasePath)
	return NewBlobStoreWithFs(fs, cfg.Storage.Bucket, cfg.Server.PublicURL), nil
}

// NewBlobStoreWithFs is used with afero.NewMemMapFs in tests.
func NewBlobStoreWithFs(fs afero.Fs, bucket, publicURL string) *BlobStore {
	return &BlobStore{
		fs:        fs,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  10 << 20,
	}
}

func (s *BlobStore) Bucket() string {
	return s.bucket
}

// SaveImage writes an image object and returns its public URL. The content is
// sniffed, the declared content type is not trusted.
func (s *BlobStore) SaveImage(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := s.objectKey(name)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrObjectTooLarge, s.maxBytes)
	}
	if !mimetype.EqualsAny(mimetype.Detect(data).String(), allowedImageTypes...) {
		return "", ErrUnsupportedContent
	}

	if err := s.fs.MkdirAll(s.bucket, 0o755); err != nil {
		return "", fmt.Errorf("failed to create bucket: %w", err)
	}
	if err := afero.WriteFile(s.fs, key, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}

	return s.URL(name), nil
}

// Open returns the object and its detected content type.
func (s *BlobStore) Open(bucket, name string) (afero.File, string, error) {
	if bucket != s.bucket {
		return nil, "", ErrObjectNotFound
	}
	key, err := s.objectKey(name)
	if err != nil {
		return nil, "", err
	}

	f, err := s.fs.Open(key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, "", ErrObjectNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to open object: %w", err)
	}

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to detect content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to rewind object: %w", err)
	}

	return f, mt.String(), nil
}

// URL is the public address of an object in the store's bucket.
func (s *BlobStore) URL(name string) string {
	return fmt.Sprintf("%s/api/v1/media/%s/%s", s.publicURL, s.bucket, name)
}

func (s *BlobStore) objectKey(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", ErrInvalidObjectName
	}
	return path.Join(s.bucket, name), nil
}
