package emaillog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"
)

// DynamoAPI is the slice of the DynamoDB client this package uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// FailureReporter surfaces swallowed write failures to an observability
// channel so store degradation is visible to operators.
type FailureReporter interface {
	LogWriteFailure(table string)
}

// Entry is one lifecycle event to record.
type Entry struct {
	MessageID    string
	Destination  string
	SourceID     string
	Status       string
	RequestID    string
	Timestamp    string
	Link         string
	ErrorMessage string
}

type WriterConfig struct {
	TableName string
	// ExpiryDays sets the retention window. Zero retains records forever.
	ExpiryDays int
}

// Writer persists log records. Writes are best-effort: a failure is logged
// and reported but never propagated, so a logging fault cannot fail the
// caller's primary operation.
type Writer struct {
	db       DynamoAPI
	reporter FailureReporter
	cfg      WriterConfig
	log      zerolog.Logger

	now func() time.Time
}

func NewWriter(db DynamoAPI, reporter FailureReporter, cfg WriterConfig, log zerolog.Logger) *Writer {
	return &Writer{
		db:       db,
		reporter: reporter,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Write persists one record keyed by (MessageId, LogTime) and reports
// whether it succeeded. Concurrent writes with an identical key overwrite
// each other; each event type is written at most once per message in
// practice.
func (w *Writer) Write(ctx context.Context, e Entry) bool {
	if e.Destination == "" {
		w.fail(errors.New("destination is required"))
		return false
	}
	if e.MessageID == "" {
		w.fail(errors.New("messageId is required"))
		return false
	}

	status := strings.ToUpper(e.Status)
	if status == "" {
		status = StatusError
	}

	rec := Record{
		MessageID:    e.MessageID,
		LogTime:      NormalizeTimestamp(e.Timestamp, w.now()),
		Destination:  e.Destination,
		RequestID:    e.RequestID,
		SourceID:     e.SourceID,
		Status:       status,
		Link:         e.Link,
		ErrorMessage: e.ErrorMessage,
	}
	if w.cfg.ExpiryDays > 0 {
		rec.ExpiryTime = w.now().AddDate(0, 0, w.cfg.ExpiryDays).Unix()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		w.fail(err)
		return false
	}

	if _, err := w.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(w.cfg.TableName),
		Item:      item,
	}); err != nil {
		w.fail(err)
		return false
	}

	w.log.Debug().
		Str("messageId", rec.MessageID).
		Str("status", rec.Status).
		Str("logTime", rec.LogTime).
		Msg("log record written")
	return true
}

func (w *Writer) fail(err error) {
	w.log.Error().Err(err).Str("table", w.cfg.TableName).Msg("log write failed")
	if w.reporter != nil {
		w.reporter.LogWriteFailure(w.cfg.TableName)
	}
}
