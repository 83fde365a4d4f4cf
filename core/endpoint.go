package core

// Endpoint is a framework-agnostic route description.
// Adapters resolve Metadata.OperationID to their own handler.
type Endpoint struct {
	Path     string
	Method   string
	Metadata EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
	// Write marks endpoints that answer 503 without reading the body when the
	// document store is unconfigured.
	Write bool
}

// Response is the envelope shared by every JSON API response
type Response struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Skipped string `json:"skipped,omitempty"`
}
