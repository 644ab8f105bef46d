package models

// IntegrationError is a single entry of an EEDM error payload.
type IntegrationError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	ID          string `json:"id,omitempty"`
	GUID        string `json:"guid,omitempty"`
}

// IntegrationErrorResponse is the body returned by EEDM routes on failure.
type IntegrationErrorResponse struct {
	Errors []IntegrationError `json:"errors"`
}

// LegacyErrorResponse is the body returned by legacy Colleague routes on failure.
type LegacyErrorResponse struct {
	Message string `json:"Message"`
}
