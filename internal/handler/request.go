// Package handler implements the Lambda request handlers: send an email,
// log SES notifications, and query the log.
package handler

import "email-api/internal/emaillog"

// RequestContext carries the fields the API Gateway mapping template
// attaches to every integration request.
type RequestContext struct {
	ResourcePath string `json:"resourcePath"`
	RequestID    string `json:"requestId"`
}

// SendRequest is the send-email integration payload.
type SendRequest struct {
	Params  SendParams     `json:"params"`
	Context RequestContext `json:"context"`
}

type SendParams struct {
	ToAddress        string   `json:"toAddress"`
	ReplyToAddresses []string `json:"replyToAddresses"`
	// FromAddress must belong to a verified domain. Empty selects the
	// configured default sender.
	FromAddress string `json:"fromAddress"`
	Subject     string `json:"subject"`
	MessageText string `json:"messageText"`
	MessageHTML string `json:"messageHtml"`
	SourceID    string `json:"sourceId"`
}

// SendResult reports the outcome of a send attempt back to the caller.
type SendResult struct {
	Success     bool   `json:"success"`
	MessageID   string `json:"messageId"`
	Status      string `json:"status"`
	RequestID   string `json:"requestId"`
	SourceID    string `json:"sourceId"`
	Destination string `json:"destination"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// QueryRequest is the query-log integration payload. The parameter names
// are lowercased by the gateway mapping.
type QueryRequest struct {
	Params  QueryParams    `json:"params"`
	Context RequestContext `json:"context"`
}

type QueryParams struct {
	MessageID   string `json:"messageid"`
	Destination string `json:"destination"`
	// ExclusiveStartKey is the URL-encoded cursor returned by a previous
	// page, echoed back verbatim.
	ExclusiveStartKey string `json:"exclusivestartkey"`
}

// QueryResponse is a query result page plus the caller's correlation id.
type QueryResponse struct {
	emaillog.QueryResult
	RequestID string `json:"requestId"`
}
