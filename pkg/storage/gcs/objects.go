package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ObjectURL is the media link for a stored object. Downloads go through
// DownloadURL so the authorized client is reused.
func (c *Client) ObjectURL(key string) string {
	return fmt.Sprintf(
		"https://storage.googleapis.com/storage/v1/b/%s/o/%s?alt=media",
		url.PathEscape(c.bucket),
		url.PathEscape(key),
	)
}

// Upload stores the payload under key with the given content type and
// returns the object's media URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, payload []byte) (string, error) {
	if c == nil {
		return "", errors.New("gcs client not initialized")
	}
	if key == "" {
		return "", errors.New("object key is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		url.PathEscape(c.bucket),
		url.QueryEscape(key),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("upload", resp)
	}

	return c.ObjectURL(key), nil
}

// DownloadURL fetches object bytes. Media URLs pointing at this client's
// bucket are fetched with credentials; anything else is fetched as-is.
func (c *Client) DownloadURL(ctx context.Context, rawURL string) ([]byte, error) {
	if c == nil {
		return nil, errors.New("gcs client not initialized")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	if strings.Contains(rawURL, "storage.googleapis.com") {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("download", resp)
	}

	return io.ReadAll(resp.Body)
}

// Delete removes the object; a missing object is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil {
		return errors.New("gcs client not initialized")
	}
	if key == "" {
		return errors.New("object key is required")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"https://storage.googleapis.com/storage/v1/b/%s/o/%s",
		url.PathEscape(c.bucket),
		url.PathEscape(key),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return apiError("delete", resp)
	}

	return nil
}

func apiError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("gcs %s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("gcs %s failed: %s", op, resp.Status)
}
