package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AdityaShome/Secondhome-sub002/config"
)

//go:generate mockgen -destination=../../internal/mocks/storage_mocks.go -package=mocks github.com/AdityaShome/Secondhome-sub002/pkg/storage Store

const (
	MaxImageBytes    = 5 << 20
	MaxListingImages = 10
	sniffLen         = 512
)

var (
	ErrUnsupportedType = errors.New("unsupported file type; allowed: jpeg, png, webp")
	ErrTooLarge        = errors.New("file exceeds 5MB")
	ErrEmptyFile       = errors.New("empty file")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store persists uploaded objects and returns their public URL.
type Store interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}

// New builds the driver selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.StorageDriver {
	case "gcs", "":
		s, err = NewGCS(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSONPath)
	case "cloudinary":
		s, err = NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	case "minio":
		s, err = NewMinio(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("storage %s: %w", cfg.StorageDriver, err)
	}
	return s, nil
}

// DetectImage sniffs the first bytes of data and returns its content type
// when it is one of the accepted image formats.
func DetectImage(head []byte) (string, error) {
	if len(head) == 0 {
		return "", ErrEmptyFile
	}
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	ct := http.DetectContentType(head)
	if _, ok := allowedTypes[ct]; !ok {
		return "", ErrUnsupportedType
	}
	return ct, nil
}

// Image is an upload that passed type and size checks.
type Image struct {
	ContentType string
	Size        int64
	Data        []byte
}

// ReadImage loads a multipart file and validates it.
func ReadImage(fh *multipart.FileHeader) (*Image, error) {
	if fh.Size > MaxImageBytes {
		return nil, ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}
	ct, err := DetectImage(data)
	if err != nil {
		return nil, err
	}
	return &Image{ContentType: ct, Size: int64(len(data)), Data: data}, nil
}

// Reader returns a fresh reader over the image bytes.
func (i *Image) Reader() io.Reader { return bytes.NewReader(i.Data) }

// ObjectKey builds "<prefix>/<owner>/<yyyymm>/<uuid><ext>".
func ObjectKey(prefix, owner, contentType string) string {
	ext := allowedTypes[contentType]
	return path.Join(strings.Trim(prefix, "/"), owner, time.Now().UTC().Format("200601"), uuid.NewString()+ext)
}
