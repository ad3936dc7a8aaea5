// Package emaillog persists and queries email lifecycle log records in
// DynamoDB. The table is keyed by (MessageId, LogTime) with a secondary
// index keyed by (Destination, LogTime); ExpiryTime drives the table's TTL.
package emaillog

// Status values a record can carry. QUEUED and ERROR come from the send
// path; the rest are uppercased SES event types.
const (
	StatusQueued    = "QUEUED"
	StatusError     = "ERROR"
	StatusSend      = "SEND"
	StatusDelivery  = "DELIVERY"
	StatusOpen      = "OPEN"
	StatusClick     = "CLICK"
	StatusBounce    = "BOUNCE"
	StatusReject    = "REJECT"
	StatusComplaint = "COMPLAINT"
)

// Record is one immutable fact about an email lifecycle event. A message id
// accumulates one record per event over its lifetime; records are never
// updated in place.
//
// LocalTime is presentation-only: the query service derives it from LogTime
// and the configured display offset, it is never stored.
type Record struct {
	MessageID    string `dynamodbav:"MessageId" json:"messageId"`
	LogTime      string `dynamodbav:"LogTime" json:"logTime"`
	Destination  string `dynamodbav:"Destination" json:"destination"`
	RequestID    string `dynamodbav:"RequestId" json:"requestId,omitempty"`
	SourceID     string `dynamodbav:"SourceId" json:"sourceId,omitempty"`
	Status       string `dynamodbav:"LogStatus" json:"status"`
	Link         string `dynamodbav:"Link,omitempty" json:"link,omitempty"`
	ErrorMessage string `dynamodbav:"ErrorMessage,omitempty" json:"errorMessage,omitempty"`
	ExpiryTime   int64  `dynamodbav:"ExpiryTime,omitempty" json:"expiryTime,omitempty"`
	LocalTime    string `dynamodbav:"-" json:"localTime,omitempty"`
}
