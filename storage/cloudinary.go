package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type imageUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// Cloudinary uploads images to a Cloudinary folder and returns their
// secure URL.
type Cloudinary struct {
	up     imageUploader
	folder string
}

func NewCloudinary(url, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	creds := cld.Config.Cloud
	if creds.CloudName == "" || creds.APIKey == "" || creds.APISecret == "" {
		return nil, errors.New("cloudinary config: CLOUDINARY_URL must be cloudinary://<api_key>:<api_secret>@<cloud_name>")
	}
	return &Cloudinary{up: &cld.Upload, folder: folder}, nil
}

func (c *Cloudinary) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	res, err := c.up.Upload(ctx, r, uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       strings.TrimSuffix(name, filepath.Ext(name)),
		Transformation: "c_limit,w_1080,h_1080,q_auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		return "", errors.New("cloudinary upload: " + res.Error.Message)
	}
	return res.SecureURL, nil
}
