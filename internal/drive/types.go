package drive

import (
	"log/slog"
	"time"
)

// FolderMimeType is the MIME type the Drive API assigns to folders.
const FolderMimeType = "application/vnd.google-apps.folder"

// Item is the normalized view of a remote drive object.
type Item struct {
	ID           string
	Name         string
	MimeType     string
	IsFolder     bool
	Size         int64
	ModifiedTime time.Time
}

// fileResource mirrors the Drive API files resource JSON exactly.
// Unexported; callers use Item via toItem() normalization.
type fileResource struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size,string,omitempty"`
	ModifiedTime string `json:"modifiedTime"`
}

type listFilesResponse struct {
	Files         []fileResource `json:"files"`
	NextPageToken string         `json:"nextPageToken"`
}

// toItem normalizes a Drive API files resource into our Item type.
// A malformed modifiedTime is logged and left as the zero time; the sync
// engine treats zero as "not newer than anything".
func (f *fileResource) toItem(logger *slog.Logger) Item {
	item := Item{
		ID:       f.ID,
		Name:     f.Name,
		MimeType: f.MimeType,
		IsFolder: f.MimeType == FolderMimeType,
		Size:     f.Size,
	}

	if f.ModifiedTime != "" {
		t, err := time.Parse(time.RFC3339, f.ModifiedTime)
		if err != nil {
			logger.Warn("unparseable modifiedTime from API",
				slog.String("item_id", f.ID),
				slog.String("modified_time", f.ModifiedTime),
			)
		} else {
			item.ModifiedTime = t
		}
	}

	return item
}
