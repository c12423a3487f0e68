package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/docsmith-ai/docsmith/internal/models"
)

// Upload endpoints. Trailing slashes matter to the service's router.
const (
	pathUploadSingle   = "/upload/"
	pathUploadArchive  = "/upload-project/"
	pathUploadMultiple = "/upload/multiple/"
	pathUploadFolder   = "/upload/folder/"
)

// Multipart field names the service expects.
const (
	fieldFile      = "file"
	fieldFiles     = "files"
	fieldFilePaths = "file_paths"
)

// uploadScheme picks the multipart layout for an endpoint: one "file"
// field, repeated "files" fields, or repeated "files" with parallel
// "file_paths" fields carrying each file's relative path.
type uploadScheme int

const (
	schemeSingle uploadScheme = iota
	schemeFiles
	schemeFolder
)

// UploadFile submits one source file for documentation.
func (c *Client) UploadFile(ctx context.Context, cf models.CandidateFile) (*GenerationResponse, error) {
	return c.upload(ctx, pathUploadSingle, []models.CandidateFile{cf}, schemeSingle)
}

// UploadArchive submits a project archive (zip) for whole-project
// documentation.
func (c *Client) UploadArchive(ctx context.Context, cf models.CandidateFile) (*GenerationResponse, error) {
	return c.upload(ctx, pathUploadArchive, []models.CandidateFile{cf}, schemeSingle)
}

// UploadMultiple submits several discrete files in one request.
func (c *Client) UploadMultiple(ctx context.Context, files []models.CandidateFile) (*GenerationResponse, error) {
	return c.upload(ctx, pathUploadMultiple, files, schemeFiles)
}

// UploadFolder submits files from a folder scan, preserving each file's
// relative path so the service can reconstruct the tree.
func (c *Client) UploadFolder(ctx context.Context, files []models.CandidateFile) (*GenerationResponse, error) {
	return c.upload(ctx, pathUploadFolder, files, schemeFolder)
}

func (c *Client) upload(ctx context.Context, path string, files []models.CandidateFile, scheme uploadScheme) (*GenerationResponse, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	// Content is read once up front. The body must be rebuildable because
	// a 401 replay sends it a second time.
	payloads, err := loadPayloads(files)
	if err != nil {
		return nil, err
	}
	body, contentType, err := buildMultipart(payloads, scheme)
	if err != nil {
		return nil, err
	}

	var out GenerationResponse
	err = c.do(ctx, c.uploadClient, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type filePayload struct {
	cf      models.CandidateFile
	content []byte
}

func loadPayloads(files []models.CandidateFile) ([]filePayload, error) {
	out := make([]filePayload, 0, len(files))
	for _, cf := range files {
		content, err := os.ReadFile(cf.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", cf.RelativePath, err)
		}
		out = append(out, filePayload{cf: cf, content: content})
	}
	return out, nil
}

func buildMultipart(payloads []filePayload, scheme uploadScheme) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	field := fieldFiles
	if scheme == schemeSingle {
		field = fieldFile
	}

	for _, p := range payloads {
		part, err := createFilePart(w, field, p.cf)
		if err != nil {
			return nil, "", fmt.Errorf("build part for %s: %w", p.cf.Name, err)
		}
		if _, err := part.Write(p.content); err != nil {
			return nil, "", fmt.Errorf("write part for %s: %w", p.cf.Name, err)
		}
		if scheme == schemeFolder {
			// Paired by position with the file part above.
			if err := w.WriteField(fieldFilePaths, p.cf.RelativePath); err != nil {
				return nil, "", fmt.Errorf("write path for %s: %w", p.cf.Name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// createFilePart is CreateFormFile with the candidate's mime hint instead
// of the blanket octet-stream default.
func createFilePart(w *multipart.Writer, field string, cf models.CandidateFile) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(field), escapeQuotes(cf.Name)))
	ct := cf.MimeHint
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return w.CreatePart(h)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
