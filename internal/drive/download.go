package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Download streams the content of a file item to the given writer using the
// alt=media content endpoint. Returns the number of bytes written.
// Folders have no content; requesting one yields an API error.
func (c *Client) Download(ctx context.Context, id string, w io.Writer) (int64, error) {
	c.logger.Info("downloading item", slog.String("item_id", id))

	path := "/files/" + url.PathEscape(id) + "?alt=media"

	resp, err := c.Do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return 0, fmt.Errorf("drive: downloading %s: %w", id, err)
	}
	defer resp.Body.Close()

	n, copyErr := io.Copy(w, resp.Body)
	if copyErr != nil {
		c.logger.Error("streaming download content failed",
			slog.String("item_id", id),
			slog.Int64("bytes_before_error", n),
			slog.String("error", copyErr.Error()),
		)

		return n, fmt.Errorf("drive: streaming content of %s: %w", id, copyErr)
	}

	c.logger.Debug("download complete",
		slog.String("item_id", id),
		slog.Int64("bytes_written", n),
	)

	return n, nil
}
