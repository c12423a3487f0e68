package api

// Wire types for the docsmith service. Field names follow the service's
// JSON conventions; optional fields are omitempty so request payloads stay
// minimal.

// GenerationResponse is the service's reply to any upload request. Batch
// endpoints nest per-file replies under Results; single-file endpoints
// leave Results empty.
type GenerationResponse struct {
	Status         string               `json:"status"`
	Documentation  string               `json:"documentation,omitempty"`
	Doc            string               `json:"doc,omitempty"` // legacy alias still sent by older service builds
	Generator      string               `json:"generator,omitempty"`
	FileName       string               `json:"file_name,omitempty"`
	ProcessedCount int                  `json:"processed_count,omitempty"`
	TotalCount     int                  `json:"total_count,omitempty"`
	Message        string               `json:"message,omitempty"`
	RemoteID       string               `json:"id,omitempty"`
	Results        []GenerationResponse `json:"results,omitempty"`
}

// DocText returns the documentation body, preferring the current field
// over the legacy alias. Missing both yields "".
func (r *GenerationResponse) DocText() string {
	if r.Documentation != "" {
		return r.Documentation
	}
	return r.Doc
}

// Succeeded reports whether this response carries a usable result.
func (r *GenerationResponse) Succeeded() bool {
	return r.Status == "success" || r.Status == "partial_success"
}

// AIStatusResponse is the health/capability probe reply.
type AIStatusResponse struct {
	Status      string `json:"status"`
	AIAvailable bool   `json:"ai_available"`
	Model       string `json:"model,omitempty"`
	Version     string `json:"version,omitempty"`
	Message     string `json:"message,omitempty"`
}

// StatsResponse summarizes account activity for the status view.
type StatsResponse struct {
	TotalFiles       int    `json:"total_files"`
	TotalGenerations int    `json:"total_documentations"`
	TotalExports     int    `json:"total_exports"`
	LastGeneratedAt  string `json:"last_generated_at,omitempty"`
}

// FileRecord is one server-side uploaded file, from GET /files/.
type FileRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedAt string `json:"uploaded_at"`
}

// DocumentationRecord is one server-side generation, from
// GET /documentation/ (listing omits the body) and
// GET /documentation/:id/ (detail includes it).
type DocumentationRecord struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Generator     string `json:"generator,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	Documentation string `json:"documentation,omitempty"`
}

// ExportResult is the reply from POST /export-docs/create-temp/: a
// short-lived URL serving the converted document.
type ExportResult struct {
	Status    string `json:"status"`
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	Format    string `json:"format"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// TokenPair is the JWT bundle issued by the auth endpoints. Refresh may be
// empty on access-only renewals.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type exportRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
}

// errorBody is the service's error envelope. Different endpoints use
// different field names; FirstMessage picks whichever is set.
type errorBody struct {
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *errorBody) FirstMessage() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Error != "":
		return e.Error
	default:
		return e.Message
	}
}
