package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// UploadNew creates a new file on the remote from the content of localPath,
// placed under parentID with the local file's base name. The multipart body
// is assembled in memory so transport retries can rewind and resend it.
func (c *Client) UploadNew(ctx context.Context, localPath, parentID string) (*Item, error) {
	name := filepath.Base(localPath)

	c.logger.Info("uploading new file",
		slog.String("name", name),
		slog.String("parent_id", parentID),
	)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("drive: opening %s for upload: %w", localPath, err)
	}
	defer f.Close()

	body, contentType, err := buildMultipartBody(name, parentID, f)
	if err != nil {
		return nil, err
	}

	path := "/files?uploadType=multipart&fields=" + url.QueryEscape(itemFields)

	resp, err := c.DoUpload(ctx, http.MethodPost, path, contentType, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("drive: uploading %s: %w", name, err)
	}
	defer resp.Body.Close()

	var parsed fileResource
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("drive: decoding upload response for %s: %w", name, err)
	}

	item := parsed.toItem(c.logger)

	return &item, nil
}

// buildMultipartBody assembles a multipart/related request body with a JSON
// metadata part followed by the raw media part.
func buildMultipartBody(name, parentID string, media io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	metaHeader := make(map[string][]string)
	metaHeader["Content-Type"] = []string{"application/json; charset=UTF-8"}

	metaPart, err := w.CreatePart(metaHeader)
	if err != nil {
		return nil, "", fmt.Errorf("drive: creating metadata part: %w", err)
	}

	meta := struct {
		Name    string   `json:"name"`
		Parents []string `json:"parents"`
	}{Name: name, Parents: []string{parentID}}

	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return nil, "", fmt.Errorf("drive: encoding metadata part: %w", err)
	}

	mediaHeader := make(map[string][]string)
	mediaHeader["Content-Type"] = []string{"application/octet-stream"}

	mediaPart, err := w.CreatePart(mediaHeader)
	if err != nil {
		return nil, "", fmt.Errorf("drive: creating media part: %w", err)
	}

	if _, err := io.Copy(mediaPart, media); err != nil {
		return nil, "", fmt.Errorf("drive: copying media content: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("drive: finalizing multipart body: %w", err)
	}

	return buf.Bytes(), "multipart/related; boundary=" + w.Boundary(), nil
}

// UpdateContent replaces the content of an existing remote file with the
// bytes of localPath. The open file handle is seekable, so transport
// retries rewind and resend from the start.
func (c *Client) UpdateContent(ctx context.Context, id, localPath string) (*Item, error) {
	c.logger.Info("updating file content",
		slog.String("item_id", id),
		slog.String("local_path", localPath),
	)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("drive: opening %s for upload: %w", localPath, err)
	}
	defer f.Close()

	path := "/files/" + url.PathEscape(id) + "?uploadType=media&fields=" + url.QueryEscape(itemFields)

	resp, err := c.DoUpload(ctx, http.MethodPatch, path, "application/octet-stream", f)
	if err != nil {
		return nil, fmt.Errorf("drive: updating content of %s: %w", id, err)
	}
	defer resp.Body.Close()

	var parsed fileResource
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("drive: decoding update response for %s: %w", id, err)
	}

	item := parsed.toItem(c.logger)

	return &item, nil
}
