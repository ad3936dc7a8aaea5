package emaillog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

type fakeDynamo struct {
	putFn   func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	queryFn func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)

	putCalls   int
	lastPut    *dynamodb.PutItemInput
	queryCalls int
	lastQuery  *dynamodb.QueryInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putCalls++
	f.lastPut = in
	if f.putFn != nil {
		return f.putFn(in)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryCalls++
	f.lastQuery = in
	if f.queryFn != nil {
		return f.queryFn(in)
	}
	return &dynamodb.QueryOutput{}, nil
}

type fakeReporter struct {
	failures []string
}

func (f *fakeReporter) LogWriteFailure(table string) {
	f.failures = append(f.failures, table)
}

func stringAttr(t *testing.T, item map[string]types.AttributeValue, name string) string {
	t.Helper()
	attr, ok := item[name]
	if !ok {
		t.Fatalf("attribute %s missing from item", name)
	}
	s, ok := attr.(*types.AttributeValueMemberS)
	if !ok {
		t.Fatalf("attribute %s is %T, want string member", name, attr)
	}
	return s.Value
}

func newTestWriter(db DynamoAPI, reporter FailureReporter, expiryDays int) *Writer {
	w := NewWriter(db, reporter, WriterConfig{TableName: "EmailLog", ExpiryDays: expiryDays}, zerolog.Nop())
	w.now = func() time.Time { return time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC) }
	return w
}

func TestWriterWrite(t *testing.T) {
	db := &fakeDynamo{}
	w := newTestWriter(db, nil, 30)

	ok := w.Write(context.Background(), Entry{
		MessageID:    "msg-1",
		Destination:  "a@b.com",
		SourceID:     "src-1",
		Status:       "bounce",
		RequestID:    "req-1",
		Timestamp:    "2023-05-01T10:00:07.000Z",
		ErrorMessage: "Permanent",
	})
	if !ok {
		t.Fatal("Write returned false")
	}
	if db.putCalls != 1 {
		t.Fatalf("putCalls = %d, want 1", db.putCalls)
	}

	item := db.lastPut.Item
	if got := stringAttr(t, item, "MessageId"); got != "msg-1" {
		t.Fatalf("MessageId = %q", got)
	}
	if got := stringAttr(t, item, "Destination"); got != "a@b.com" {
		t.Fatalf("Destination = %q", got)
	}
	if got := stringAttr(t, item, "LogStatus"); got != "BOUNCE" {
		t.Fatalf("LogStatus = %q, want uppercased BOUNCE", got)
	}
	if got := stringAttr(t, item, "LogTime"); got != "2023-05-01T10:00:07.000Z" {
		t.Fatalf("LogTime = %q", got)
	}
	if got := stringAttr(t, item, "ErrorMessage"); got != "Permanent" {
		t.Fatalf("ErrorMessage = %q", got)
	}
	if _, ok := item["Link"]; ok {
		t.Fatal("Link attribute should be omitted when empty")
	}

	expiry, ok := item["ExpiryTime"].(*types.AttributeValueMemberN)
	if !ok {
		t.Fatalf("ExpiryTime is %T, want number member", item["ExpiryTime"])
	}
	want := time.Date(2023, 7, 15, 12, 0, 0, 0, time.UTC).Unix()
	if expiry.Value != "1689422400" {
		t.Fatalf("ExpiryTime = %s, want %d", expiry.Value, want)
	}
}

func TestWriterWriteDefaults(t *testing.T) {
	db := &fakeDynamo{}
	w := newTestWriter(db, nil, 0)

	if ok := w.Write(context.Background(), Entry{MessageID: "msg-1", Destination: "a@b.com"}); !ok {
		t.Fatal("Write returned false")
	}

	item := db.lastPut.Item
	if got := stringAttr(t, item, "LogStatus"); got != StatusError {
		t.Fatalf("LogStatus = %q, want default %q", got, StatusError)
	}
	if got := stringAttr(t, item, "LogTime"); got != "2023-06-15T12:00:00.000Z" {
		t.Fatalf("LogTime = %q, want generated write time", got)
	}
	if _, ok := item["ExpiryTime"]; ok {
		t.Fatal("ExpiryTime should be omitted when retention is unlimited")
	}
}

func TestWriterWriteRejectsMissingKeys(t *testing.T) {
	cases := []struct {
		name  string
		entry Entry
	}{
		{name: "missing destination", entry: Entry{MessageID: "msg-1"}},
		{name: "missing messageId", entry: Entry{Destination: "a@b.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &fakeDynamo{}
			reporter := &fakeReporter{}
			w := newTestWriter(db, reporter, 0)

			if ok := w.Write(context.Background(), tc.entry); ok {
				t.Fatal("Write returned true for invalid entry")
			}
			if db.putCalls != 0 {
				t.Fatalf("putCalls = %d, want 0", db.putCalls)
			}
			if len(reporter.failures) != 1 {
				t.Fatalf("reported failures = %d, want 1", len(reporter.failures))
			}
		})
	}
}

func TestWriterWriteSwallowsStoreFailure(t *testing.T) {
	db := &fakeDynamo{putFn: func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
		return nil, errors.New("throttled")
	}}
	reporter := &fakeReporter{}
	w := newTestWriter(db, reporter, 0)

	if ok := w.Write(context.Background(), Entry{MessageID: "msg-1", Destination: "a@b.com"}); ok {
		t.Fatal("Write returned true on store failure")
	}
	if len(reporter.failures) != 1 || reporter.failures[0] != "EmailLog" {
		t.Fatalf("reporter failures = %v", reporter.failures)
	}
}
