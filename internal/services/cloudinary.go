package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ArtifactStorage persists the analysis workbook remotely and hands back a
// stable URL that stays fetchable for later download.
type ArtifactStorage interface {
	Upload(ctx context.Context, content []byte, fileName string) (string, error)
	Download(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, fileName string) error
}

type cloudinaryStorage struct {
	client    *resty.Client
	download  *resty.Client
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string, timeout time.Duration) ArtifactStorage {
	return &cloudinaryStorage{
		client: resty.New().
			SetBaseURL(fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cloudName)).
			SetTimeout(timeout),
		download:  resty.New().SetTimeout(timeout),
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    folder,
	}
}

// Upload implements ArtifactStorage. Workbooks go up as raw resources under
// the configured folder; re-uploading the same public id replaces the file
// wholesale.
func (c *cloudinaryStorage) Upload(ctx context.Context, content []byte, fileName string) (string, error) {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	params := map[string]string{
		"folder":    c.folder,
		"public_id": fileName,
		"timestamp": timestamp,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", fileName, bytes.NewReader(content)).
		SetFormData(map[string]string{
			"api_key":   c.apiKey,
			"folder":    c.folder,
			"public_id": fileName,
			"timestamp": timestamp,
			"signature": c.sign(params),
		}).
		SetResult(map[string]interface{}{}).
		Post("/raw/upload")
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("artifact upload failed: %s: %s", resp.Status(), resp.String())
	}

	result := *resp.Result().(*map[string]interface{})
	url, _ := result["secure_url"].(string)
	if url == "" {
		return "", fmt.Errorf("artifact upload response has no secure_url")
	}

	return url, nil
}

// Download implements ArtifactStorage.
func (c *cloudinaryStorage) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.download.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("artifact download failed: %s", resp.Status())
	}

	return resp.Body(), nil
}

// Delete implements ArtifactStorage. Used as the compensating action when
// campaign persistence fails after upload.
func (c *cloudinaryStorage) Delete(ctx context.Context, fileName string) error {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	publicID := c.folder + "/" + fileName
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"api_key":   c.apiKey,
			"public_id": publicID,
			"timestamp": timestamp,
			"signature": c.sign(params),
		}).
		Post("/raw/destroy")
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("artifact deletion failed: %s", resp.Status())
	}

	return nil
}

// sign produces the Cloudinary request signature: SHA-1 over the
// alphabetically sorted params plus the API secret.
func (c *cloudinaryStorage) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}
