package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// itemFields is the $fields projection requested for single items and listings.
const itemFields = "id,name,mimeType,size,modifiedTime"

// ListChildren returns all non-trashed children of the given folder,
// following pagination until the listing is exhausted. Order is the API's
// listing order; duplicate sibling names are returned as-is.
func (c *Client) ListChildren(ctx context.Context, folderID string) ([]Item, error) {
	c.logger.Debug("listing children", slog.String("folder_id", folderID))

	var items []Item

	pageToken := ""
	for {
		page, next, err := c.listPage(ctx, folderID, pageToken)
		if err != nil {
			return nil, err
		}

		items = append(items, page...)

		if next == "" {
			break
		}

		pageToken = next
	}

	c.logger.Debug("listing complete",
		slog.String("folder_id", folderID),
		slog.Int("count", len(items)),
	)

	return items, nil
}

// listPage fetches one page of a children listing.
func (c *Client) listPage(ctx context.Context, folderID, pageToken string) ([]Item, string, error) {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", folderID))
	q.Set("pageSize", fmt.Sprintf("%d", c.pageSize))
	q.Set("fields", "nextPageToken,files("+itemFields+")")

	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	resp, err := c.Do(ctx, http.MethodGet, "/files?"+q.Encode(), "", nil)
	if err != nil {
		return nil, "", fmt.Errorf("drive: listing children of %s: %w", folderID, err)
	}
	defer resp.Body.Close()

	var parsed listFilesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, "", fmt.Errorf("drive: decoding listing for %s: %w", folderID, err)
	}

	items := make([]Item, 0, len(parsed.Files))
	for i := range parsed.Files {
		items = append(items, parsed.Files[i].toItem(c.logger))
	}

	return items, parsed.NextPageToken, nil
}

// GetMetadata fetches the metadata of a single item.
func (c *Client) GetMetadata(ctx context.Context, id string) (*Item, error) {
	c.logger.Debug("getting metadata", slog.String("item_id", id))

	path := "/files/" + url.PathEscape(id) + "?fields=" + url.QueryEscape(itemFields)

	resp, err := c.Do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, fmt.Errorf("drive: getting metadata for %s: %w", id, err)
	}
	defer resp.Body.Close()

	var parsed fileResource
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("drive: decoding metadata for %s: %w", id, err)
	}

	item := parsed.toItem(c.logger)

	return &item, nil
}
