// Package sesevent models SES event-publishing notifications as delivered
// through SNS, and classifies them into the fields the log store records.
// These types aren't defined in the AWS SDK.
//
// See:
// - https://docs.aws.amazon.com/ses/latest/dg/event-publishing-retrieving-sns-contents.html
package sesevent

// EventType is the discriminator tag of a notification message.
type EventType string

const (
	TypeSend      EventType = "Send"
	TypeDelivery  EventType = "Delivery"
	TypeOpen      EventType = "Open"
	TypeClick     EventType = "Click"
	TypeBounce    EventType = "Bounce"
	TypeReject    EventType = "Reject"
	TypeComplaint EventType = "Complaint"
)

// Record is one notification message. Only the sub-object matching
// EventType is populated; the rest stay nil.
//
// Timestamps are kept as the provider's ISO-8601 strings. An empty
// timestamp after classification means the event type was not recognized.
type Record struct {
	EventType EventType       `json:"eventType"`
	Mail      Mail            `json:"mail"`
	Open      *OpenEvent      `json:"open"`
	Delivery  *DeliveryEvent  `json:"delivery"`
	Reject    *RejectEvent    `json:"reject"`
	Bounce    *BounceEvent    `json:"bounce"`
	Click     *ClickEvent     `json:"click"`
	Complaint *ComplaintEvent `json:"complaint"`
}

// Mail describes the original send this event belongs to.
type Mail struct {
	Timestamp   string   `json:"timestamp"`
	MessageID   string   `json:"messageId"`
	Source      string   `json:"source"`
	Destination []string `json:"destination"`
}

type OpenEvent struct {
	Timestamp string `json:"timestamp"`
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent"`
}

type DeliveryEvent struct {
	Timestamp            string   `json:"timestamp"`
	ProcessingTimeMillis int64    `json:"processingTimeMillis"`
	Recipients           []string `json:"recipients"`
	SMTPResponse         string   `json:"smtpResponse"`
}

type RejectEvent struct {
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason"`
}

type BounceEvent struct {
	BounceType        string      `json:"bounceType"`
	BounceSubType     string      `json:"bounceSubType"`
	BouncedRecipients []Recipient `json:"bouncedRecipients"`
	Timestamp         string      `json:"timestamp"`
	FeedbackID        string      `json:"feedbackId"`
}

type ClickEvent struct {
	Timestamp string              `json:"timestamp"`
	IPAddress string              `json:"ipAddress"`
	UserAgent string              `json:"userAgent"`
	Link      string              `json:"link"`
	LinkTags  map[string][]string `json:"linkTags"`
}

// ComplaintEvent reports a spam complaint. Its recipient list may cover
// every address mailed on the complaining user's domain, not just the
// original recipient.
type ComplaintEvent struct {
	ComplaintSubType      string      `json:"complaintSubType"`
	BouncedRecipients     []Recipient `json:"bouncedRecipients"`
	Timestamp             string      `json:"timestamp"`
	FeedbackID            string      `json:"feedbackId"`
	ComplaintFeedbackType string      `json:"complaintFeedbackType"`
	UserAgent             string      `json:"userAgent"`
}

type Recipient struct {
	EmailAddress   string `json:"emailAddress"`
	Action         string `json:"action"`
	Status         string `json:"status"`
	DiagnosticCode string `json:"diagnosticCode"`
}
