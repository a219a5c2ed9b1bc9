// Package storage keeps task proof files in object storage. Callers get back
// an opaque URL which they store verbatim.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// AllowProof lists the content types accepted as proof uploads.
var AllowProof = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

var ErrContentType = errors.New("content type not allowed")

type ProofStore interface {
	Upload(ctx context.Context, file io.Reader, filename, contentType string) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// CheckContentType rejects uploads whose type is not in allowed.
func CheckContentType(contentType string, allowed ...string) error {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, a := range allowed {
		if ct == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrContentType, contentType)
}

// SniffContentType detects the type of file from its leading bytes, checks it
// against allowed and rewinds file for the upload that follows. The header
// the client sent is never consulted.
func SniffContentType(file io.ReadSeeker, allowed ...string) (string, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("sniff content type: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	ct := mtype.String()
	if err := CheckContentType(ct, allowed...); err != nil {
		return "", err
	}
	return ct, nil
}

// objectName returns a collision-free name that keeps the file extension.
func objectName(filename string) string {
	return uuid.NewString() + strings.ToLower(path.Ext(filename))
}
