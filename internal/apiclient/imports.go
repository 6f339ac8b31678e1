package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"prodimport/internal/models"
)

// Upload posts the file as multipart field "file" to /imports/ and returns
// the job the server queued for it.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*models.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req := &request{
		method:      http.MethodPost,
		path:        "/imports/",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}

	var resp models.UploadResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.JobID == "" {
		return nil, ErrNoJobID
	}
	return &resp, nil
}

// ImportStatus fetches the current state of an import job.
func (c *Client) ImportStatus(ctx context.Context, jobID string) (*models.ImportStatus, error) {
	req := &request{method: http.MethodGet, path: "/imports/status/" + escapeID(jobID) + "/"}

	var status models.ImportStatus
	if err := c.do(ctx, req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
