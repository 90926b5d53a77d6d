package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads images under a folder; the key minus extension is the public id.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(url, folder string) (*Cloudinary, error) {
	if url == "" {
		return nil, errors.New("CLOUDINARY_URL is required for the cloudinary driver")
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld, folder: strings.Trim(folder, "/")}, nil
}

func publicID(key string) string {
	return strings.TrimSuffix(key, path.Ext(key))
}

func (c *Cloudinary) Upload(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       publicID(key),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		return "", err
	}
	if res.Error.Message != "" {
		return "", errors.New(res.Error.Message)
	}
	return res.SecureURL, nil
}

func (c *Cloudinary) Delete(ctx context.Context, key string) error {
	id := publicID(key)
	if c.folder != "" {
		id = c.folder + "/" + id
	}
	_, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	return err
}
