package controllers

// ErrorResponse is the uniform error body. Details carries remediation
// guidance when the failure has one (bot challenges).
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ProbeRequest struct {
	URL string `json:"url"`
}

type StartResponse struct {
	DownloadID string `json:"download_id"`
	Status     string `json:"status"`
}
