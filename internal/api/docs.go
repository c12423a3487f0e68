package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	pathAIStatus      = "/ai-status/"
	pathStats         = "/stats/"
	pathFiles         = "/files/"
	pathDocumentation = "/documentation/"
	pathExportCreate  = "/export-docs/create-temp/"
)

// AIStatus probes the service's health and AI capability. Uses the short
// probe timeout and a single attempt so failure diagnostics stay fast.
func (c *Client) AIStatus(ctx context.Context) (*AIStatusResponse, error) {
	var out AIStatusResponse
	err := c.doOnce(ctx, c.probeClient, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAIStatus, nil)
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches account activity counters.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	var out StatsResponse
	if err := c.getJSON(ctx, c.httpClient, pathStats, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFiles fetches the server-side record of uploaded files.
func (c *Client) ListFiles(ctx context.Context) ([]FileRecord, error) {
	var out []FileRecord
	if err := c.getJSON(ctx, c.httpClient, pathFiles, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDocumentation fetches generation records, newest first. Bodies are
// omitted in the listing; fetch one with GetDocumentation.
func (c *Client) ListDocumentation(ctx context.Context) ([]DocumentationRecord, error) {
	var out []DocumentationRecord
	if err := c.getJSON(ctx, c.httpClient, pathDocumentation, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDocumentation fetches one generation with its body.
func (c *Client) GetDocumentation(ctx context.Context, id string) (*DocumentationRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("documentation id is required")
	}
	var out DocumentationRecord
	path := pathDocumentation + url.PathEscape(id) + "/"
	if err := c.getJSON(ctx, c.httpClient, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateExport asks the service to convert content into the given format
// (docx, pdf) and returns a short-lived download URL.
func (c *Client) CreateExport(ctx context.Context, content, format string) (*ExportResult, error) {
	var out ExportResult
	err := c.postJSON(ctx, c.httpClient, pathExportCreate, exportRequest{
		Content: content,
		Format:  format,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, fmt.Errorf("export response missing download url")
	}
	return &out, nil
}

// DownloadExport streams a previously created export into w. Accepts both
// absolute URLs and paths relative to the service root.
func (c *Client) DownloadExport(ctx context.Context, exportURL string, w io.Writer) error {
	target := exportURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		if !strings.HasPrefix(target, "/") {
			target = "/" + target
		}
		target = c.baseURL + target
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.applyAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		return fmt.Errorf("download export: %w", err)
	}
	defer resp.Body.Close()
	c.setOnline(true)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
