package libs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadToCloudinary pushes a locally staged image to cloudinary and removes
// the local copy. Returns the secure URL. Credentials come from either
// CLOUDINARY_URL or the three separate env vars.
func UploadToCloudinary(localPath, folder string) (string, error) {
	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		return "", fmt.Errorf("file not found: %s", localPath)
	}

	cld, err := newClient()
	if err != nil {
		return "", err
	}

	resp, err := cld.Upload.Upload(context.Background(), localPath, uploader.UploadParams{
		PublicID: fmt.Sprintf("%s_%d", folder, time.Now().UnixNano()),
		Folder:   folder,
	})

	os.Remove(localPath)

	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp == nil || resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary returned an empty response")
	}

	return resp.SecureURL, nil
}

func newClient() (*cloudinary.Cloudinary, error) {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	if cloudName != "" && apiKey != "" && apiSecret != "" {
		cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary init failed: %w", err)
		}
		return cld, nil
	}

	cldURL := os.Getenv("CLOUDINARY_URL")
	if cldURL == "" {
		return nil, fmt.Errorf("cloudinary environment variables not set")
	}

	cld, err := cloudinary.NewFromURL(cldURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init failed: %w", err)
	}
	return cld, nil
}
