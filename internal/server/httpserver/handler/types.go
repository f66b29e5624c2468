package handler

import "github.com/yndnr/pushmesh-go/internal/storage/memory"

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(message string, data any) *Response {
	return &Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(code, message, detail string) *Response {
	return &Response{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Code: code, Detail: detail},
	}
}

// NotifyRequest is the request body for POST /notify.
type NotifyRequest struct {
	DestinationID string `json:"destination_id"`
	SenderID      string `json:"sender_id"`
	Message       string `json:"message"`
}

// NotifyMachineRequest is the request body for the legacy
// POST /notify-machine endpoint.
type NotifyMachineRequest struct {
	MachineID string `json:"machine_id"`
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
}

// NotifyResponse is the data returned for a delivered notification.
type NotifyResponse struct {
	DestinationID string `json:"destination_id"`
	Outcome       string `json:"outcome"`
}

// ConnectionsResponse is the response body for GET /connections.
type ConnectionsResponse struct {
	Connections []string                `json:"connections"`
	Count       int                     `json:"count"`
	Details     []memory.ConnectionInfo `json:"details,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version,omitempty"`
	Connections int    `json:"connections"`
	Time        string `json:"time"`
}
