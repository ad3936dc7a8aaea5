package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"email-api/internal/emaillog"
	"email-api/internal/sesevent"
)

// NotificationHandler takes SES event notifications from SNS and writes one
// log record per envelope.
type NotificationHandler struct {
	logs LogWriter
	log  zerolog.Logger
}

func NewNotificationHandler(logs LogWriter, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{logs: logs, log: log}
}

// Handle processes one SNS delivery. Envelopes are handled concurrently
// and the batch is all-or-nothing: the first malformed envelope cancels the
// rest and the whole delivery reports failure. Writes are not deduplicated,
// so a partial commit followed by SNS redelivery would double-log.
//
// The returned bool is the batch success indicator; errors are never
// propagated to the invoker.
func (h *NotificationHandler) Handle(ctx context.Context, event events.SNSEvent) (bool, error) {
	if len(event.Records) == 0 {
		h.log.Error().Msg("no records found in SNS event")
		return false, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	messageIDs := make([]string, len(event.Records))
	for i, record := range event.Records {
		i, record := i, record
		g.Go(func() error {
			id, err := h.logEvent(ctx, record)
			if err != nil {
				return err
			}
			messageIDs[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Error().Err(err).Int("records", len(event.Records)).Msg("notification batch failed")
		return false, nil
	}

	h.log.Info().Strs("messageIds", messageIDs).Msg("logged notification batch")
	return true, nil
}

func (h *NotificationHandler) logEvent(ctx context.Context, record events.SNSEventRecord) (string, error) {
	var msg sesevent.Record
	if err := json.Unmarshal([]byte(record.SNS.Message), &msg); err != nil {
		return "", fmt.Errorf("parse notification message: %w", err)
	}
	if msg.Mail.MessageID == "" {
		return "", errors.New("missing messageId")
	}

	details := sesevent.Classify(&msg)
	if len(details.Destinations) == 0 {
		return "", fmt.Errorf("no destinations for message %s", msg.Mail.MessageID)
	}
	if details.Timestamp == "" {
		return "", fmt.Errorf("unknown eventType: %s", msg.EventType)
	}

	h.logs.Write(ctx, emaillog.Entry{
		MessageID: msg.Mail.MessageID,
		// The send path enforces one recipient per message id, so only the
		// first classified destination is logged.
		Destination:  details.Destinations[0],
		Status:       strings.ToUpper(string(msg.EventType)),
		RequestID:    record.SNS.MessageID,
		Timestamp:    details.Timestamp,
		Link:         details.Link,
		ErrorMessage: details.ErrorMessage,
	})
	return msg.Mail.MessageID, nil
}
