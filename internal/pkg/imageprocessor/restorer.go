package imageprocessor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/revivapix/RevivaPix/internal/pkg/env"
)

// RestoreClient talks to the external AI restoration service. The service
// accepts a multipart image upload and responds with the restored image bytes.
type RestoreClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewRestoreClient builds a restoration client from environment variables.
func NewRestoreClient() *RestoreClient {
	return &RestoreClient{
		BaseURL: env.GetEnv("RESTORE_API_URL", ""),
		APIKey:  env.GetEnv("RESTORE_API_KEY", ""),
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Restore uploads the original image and returns the restored result.
func (c *RestoreClient) Restore(ctx context.Context, filename string, data []byte) ([]byte, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, errors.New("RESTORE_API_URL is not configured")
	}
	if len(data) == 0 {
		return nil, errors.New("image data is empty")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/restore", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("restoration request failed: status=%d body=%s", resp.StatusCode, truncateBody(out))
	}
	if len(out) == 0 {
		return nil, errors.New("restoration service returned an empty image")
	}
	return out, nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
