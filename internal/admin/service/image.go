package service

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ridloal/storefront-sync/internal/product/domain"
)

const MaxImageBytes = 5 * 1024 * 1024

// ImageDataURI turns an uploaded file into a data: URI the pages can display directly.
// The content type is sniffed, not taken from the client.
func ImageDataURI(r io.Reader, size int64) (string, error) {
	if size > MaxImageBytes {
		return "", domain.NewValidationError("Image file size must be less than 5MB.", "image")
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return "", domain.NewValidationError("Image file size must be less than 5MB.", "image")
	}

	mime := strings.SplitN(mimetype.Detect(data).String(), ";", 2)[0]
	if !strings.HasPrefix(mime, "image/") {
		return "", domain.NewValidationError("Please select a valid image file.", "image")
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func ImageFromUpload(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageBytes {
		return "", domain.NewValidationError("Image file size must be less than 5MB.", "image")
	}
	f, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return ImageDataURI(f, header.Size)
}
