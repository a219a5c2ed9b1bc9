package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/google/uuid"
)

// CloudinaryStore uploads proofs as private-by-obscurity Cloudinary assets.
type CloudinaryStore struct {
	cloudName string
	folder    string
	uploader  *uploader.API
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cloudName: cloudName, folder: folder, uploader: up}, nil
}

func (c *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	publicID := uuid.NewString()
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// Delete destroys the asset behind url. URLs that do not belong to this
// cloud are ignored.
func (c *CloudinaryStore) Delete(ctx context.Context, url string) error {
	publicID := c.publicIDFromURL(url)
	if publicID == "" {
		return nil
	}
	_, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// publicIDFromURL turns
// https://res.cloudinary.com/<cloud>/image/upload/v123/<folder>/<id>.jpg
// into <folder>/<id>.
func (c *CloudinaryStore) publicIDFromURL(url string) string {
	marker := "res.cloudinary.com/" + c.cloudName + "/"
	i := strings.Index(url, marker)
	if i < 0 {
		return ""
	}
	rest := url[i+len(marker):]
	j := strings.Index(rest, "/upload/")
	if j < 0 {
		return ""
	}
	rest = rest[j+len("/upload/"):]
	if k := strings.Index(rest, "/"); k > 1 && rest[0] == 'v' && isDigits(rest[1:k]) {
		rest = rest[k+1:]
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
