package comatproto

import (
	"context"

	"github.com/skylex-dev/skylex/pkg/lexicon/lexutil"
	"github.com/skylex-dev/skylex/pkg/xrpc"
)

const NSIDRepoUploadBlob = "com.atproto.repo.uploadBlob"

// RepoUploadBlob_Output is the output of com.atproto.repo.uploadBlob.
type RepoUploadBlob_Output struct {
	Blob lexutil.BlobRef `json:"blob"`
}

// RepoUploadBlob uploads data as a blob. An empty mimeType is sniffed from the data.
func RepoUploadBlob(ctx context.Context, c *xrpc.Client, data []byte, mimeType string) (*RepoUploadBlob_Output, error) {
	if mimeType == "" {
		mimeType = lexutil.DetectMimeType(data)
	}

	var out RepoUploadBlob_Output
	if err := c.Upload(ctx, NSIDRepoUploadBlob, data, mimeType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
