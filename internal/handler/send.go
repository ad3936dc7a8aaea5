package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"email-api/internal/apierr"
	"email-api/internal/emaillog"
)

const charsetUTF8 = "UTF-8"

// SES error codes where the fault lies with the caller and the response
// should be a 400.
// https://docs.aws.amazon.com/ses/latest/DeveloperGuide/using-ses-api-error-codes.html
var ses400Codes = map[string]bool{
	"MailFromDomainNotVerified": true,
	"MessageRejected":           true,
}

// EmailSender is the slice of the SES client the send handler uses.
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// LogWriter records lifecycle events. Write never propagates failure.
type LogWriter interface {
	Write(ctx context.Context, e emaillog.Entry) bool
}

type SendConfig struct {
	ConfigurationSetName string
	DefaultFromAddress   string
}

// SendHandler validates a send request and delegates to SES.
//
// Sending is restricted to a single toAddress per call (no cc/bcc/multi-to)
// so the returned provider message id maps 1:1 to one destination; that is
// what makes per-recipient log correlation possible.
type SendHandler struct {
	ses  EmailSender
	logs LogWriter
	cfg  SendConfig
	log  zerolog.Logger

	now func() time.Time
}

func NewSendHandler(ses EmailSender, logs LogWriter, cfg SendConfig, log zerolog.Logger) *SendHandler {
	return &SendHandler{ses: ses, logs: logs, cfg: cfg, log: log, now: time.Now}
}

// Handle sends one email. Every exit path, success or failure, writes
// exactly one log record; when no provider message id was issued the
// request id substitutes as the log key so the attempt stays traceable.
func (h *SendHandler) Handle(ctx context.Context, req SendRequest) (SendResult, error) {
	p := req.Params

	sourceID := p.SourceID
	if sourceID == "" {
		sourceID = "Not supplied"
	}
	requestID := req.Context.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	result := SendResult{
		Status:      emaillog.StatusError,
		RequestID:   requestID,
		SourceID:    sourceID,
		Destination: p.ToAddress,
	}
	var errorMessage string

	defer func() {
		messageID := result.MessageID
		if messageID == "" {
			messageID = requestID
		}
		h.logs.Write(ctx, emaillog.Entry{
			MessageID:    messageID,
			Destination:  result.Destination,
			SourceID:     sourceID,
			Status:       result.Status,
			RequestID:    requestID,
			Timestamp:    result.Timestamp,
			ErrorMessage: errorMessage,
		})
	}()

	if err := validateSendParams(p); err != nil {
		errorMessage = err.Error()
		return result, h.apiError(err, requestID, sourceID)
	}

	result.Timestamp = emaillog.FormatTime(h.now())
	out, err := h.ses.SendEmail(ctx, h.sendInput(p))
	if err != nil {
		errorMessage = err.Error()
		h.log.Error().Err(err).Str("requestId", requestID).Str("toAddress", p.ToAddress).Msg("send failed")
		return result, h.apiError(err, requestID, sourceID)
	}

	result.Status = emaillog.StatusQueued
	result.Success = true
	result.MessageID = aws.ToString(out.MessageId)
	h.log.Info().Str("messageId", result.MessageID).Str("requestId", requestID).Msg("email queued")
	return result, nil
}

func validateSendParams(p SendParams) error {
	if p.ToAddress == "" {
		return apierr.NewValidation("toAddress is required")
	}
	if p.Subject == "" {
		return apierr.NewValidation("subject is required")
	}
	if p.MessageText == "" && p.MessageHTML == "" {
		return apierr.NewValidation("either messageText or messageHtml is required")
	}

	all := append([]string{p.ToAddress, p.FromAddress}, p.ReplyToAddresses...)
	for _, addr := range all {
		if addr != "" && !isValidEmail(addr) {
			return apierr.NewValidation("invalid email address: %s", addr)
		}
	}
	return nil
}

func (h *SendHandler) sendInput(p SendParams) *sesv2.SendEmailInput {
	body := &sestypes.Body{}
	if p.MessageText != "" {
		body.Text = &sestypes.Content{Data: aws.String(p.MessageText), Charset: aws.String(charsetUTF8)}
	}
	if p.MessageHTML != "" {
		body.Html = &sestypes.Content{Data: aws.String(p.MessageHTML), Charset: aws.String(charsetUTF8)}
	}

	from := p.FromAddress
	if from == "" {
		from = h.cfg.DefaultFromAddress
	}

	in := &sesv2.SendEmailInput{
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Body:    body,
				Subject: &sestypes.Content{Data: aws.String(p.Subject), Charset: aws.String(charsetUTF8)},
			},
		},
		Destination:      &sestypes.Destination{ToAddresses: []string{p.ToAddress}},
		FromEmailAddress: aws.String(from),
		ReplyToAddresses: p.ReplyToAddresses,
	}
	if h.cfg.ConfigurationSetName != "" {
		in.ConfigurationSetName = aws.String(h.cfg.ConfigurationSetName)
	}
	return in
}

// apiError classifies err as a caller fault (validation failure or an SES
// caller-fault code) or an internal error, and wraps it for the gateway.
func (h *SendHandler) apiError(err error, requestID, sourceID string) error {
	code := http.StatusInternalServerError

	var vErr *apierr.ValidationError
	if errors.As(err, &vErr) {
		code = http.StatusBadRequest
	}
	var sesErr smithy.APIError
	if errors.As(err, &sesErr) && ses400Codes[sesErr.ErrorCode()] {
		code = http.StatusBadRequest
	}

	return apierr.New(err.Error(), code, requestID, sourceID)
}
