package lexutil

import (
	"github.com/h2non/filetype"
)

// BlobRef points at an uploaded blob.
type BlobRef struct {
	Type     string  `json:"$type"`
	Ref      LinkRef `json:"ref"`
	MimeType string  `json:"mimeType"`
	Size     int64   `json:"size"`
}

// LinkRef is a CID link in its JSON form.
type LinkRef struct {
	Link string `json:"$link"`
}

const defaultMimeType = "application/octet-stream"

// DetectMimeType sniffs the content type of data from its magic bytes.
func DetectMimeType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || kind.MIME.Value == "" {
		return defaultMimeType
	}
	return kind.MIME.Value
}
