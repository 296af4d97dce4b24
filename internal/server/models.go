package server

import "github.com/go-playground/validator/v10"

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// QueryRequest represents a user query payload.
type QueryRequest struct {
	Question string `json:"question" validate:"required"`
}

// QueryResponse carries the pipeline's answer for a single query.
type QueryResponse struct {
	Answer       string      `json:"answer"`
	Emotion      string      `json:"emotion,omitempty"`
	RunID        string      `json:"run_id"`
	ProcessingMS int64       `json:"processing_ms"`
	Trace        interface{} `json:"trace,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// CustomValidator adapts go-playground/validator to echo's Validator hook.
type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
