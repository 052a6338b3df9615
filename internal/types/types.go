package types

import "shopbot-backend/internal/catalog"

type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string            `json:"sessionId"`
	Reply     string            `json:"reply"`
	Products  []catalog.Product `json:"products"`
}

// ErrorResponse keeps the reply field so chat widgets can show errors inline.
type ErrorResponse struct {
	Reply string `json:"reply"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
}
