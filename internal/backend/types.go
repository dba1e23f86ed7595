package backend

// UploadResponse is the body returned by POST /upload.
type UploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// ThumbnailsResponse is the body returned by GET /thumbnails/{filename}.
type ThumbnailsResponse struct {
	Thumbnails []string `json:"thumbnails"`
}

// ExportClip is one range of an export request, in seconds.
type ExportClip struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ExportRequest is the body sent to POST /export.
type ExportRequest struct {
	Filename string       `json:"filename"`
	Clips    []ExportClip `json:"clips"`
}

// ExportResponse is the optional body of a successful export. Backends that
// only return a status code leave it empty.
type ExportResponse struct {
	Status  string   `json:"status,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
}
