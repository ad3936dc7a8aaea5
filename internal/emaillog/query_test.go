package emaillog

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

func newTestQueryService(t *testing.T, db DynamoAPI) *QueryService {
	t.Helper()
	s, err := NewQueryService(db, QueryConfig{
		TableName:        "EmailLog",
		DestinationIndex: "DestinationIdIndex",
		UTCOffset:        "+07:00",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewQueryService: %v", err)
	}
	return s
}

func logItem(messageID, logTime, destination, status string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"MessageId":   &types.AttributeValueMemberS{Value: messageID},
		"LogTime":     &types.AttributeValueMemberS{Value: logTime},
		"Destination": &types.AttributeValueMemberS{Value: destination},
		"LogStatus":   &types.AttributeValueMemberS{Value: status},
	}
}

func TestQueryServiceRejectsBadOffset(t *testing.T) {
	_, err := NewQueryService(&fakeDynamo{}, QueryConfig{TableName: "EmailLog", UTCOffset: "bogus"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for invalid offset")
	}
}

func TestByMessageID(t *testing.T) {
	db := &fakeDynamo{queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
			logItem("msg-1", "2023-05-01T10:00:07.000Z", "a@b.com", "BOUNCE"),
			logItem("msg-1", "2023-05-01T10:00:00.000Z", "a@b.com", "QUEUED"),
		}}, nil
	}}
	s := newTestQueryService(t, db)

	res, err := s.ByMessageID(context.Background(), "msg-1", nil)
	if err != nil {
		t.Fatalf("ByMessageID: %v", err)
	}

	in := db.lastQuery
	if in.IndexName != nil {
		t.Fatalf("IndexName = %q, want none for primary key query", *in.IndexName)
	}
	if got := aws.ToString(in.KeyConditionExpression); got != "MessageId = :id" {
		t.Fatalf("KeyConditionExpression = %q", got)
	}
	if fwd := in.ScanIndexForward; fwd == nil || *fwd {
		t.Fatal("ScanIndexForward should be false for newest-first ordering")
	}
	if in.ExclusiveStartKey != nil {
		t.Fatal("ExclusiveStartKey should be unset for the first page")
	}

	if !res.Success {
		t.Fatal("Success = false")
	}
	if len(res.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(res.Data))
	}
	if res.Data[0].Status != "BOUNCE" || res.Data[1].Status != "QUEUED" {
		t.Fatalf("unexpected order: %s then %s", res.Data[0].Status, res.Data[1].Status)
	}
	if got, want := res.Data[1].LocalTime, "01 May 2023, 17:00:00.000 +07:00"; got != want {
		t.Fatalf("LocalTime = %q, want %q", got, want)
	}
	if res.MorePages || res.LastEvaluatedKey != nil {
		t.Fatal("single page should not report more pages")
	}
}

func TestByDestinationUsesIndex(t *testing.T) {
	db := &fakeDynamo{queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
			logItem("msg-1", "2023-05-01T10:00:00.000Z", "a@b.com", "QUEUED"),
		}}, nil
	}}
	s := newTestQueryService(t, db)

	if _, err := s.ByDestination(context.Background(), "a@b.com", nil); err != nil {
		t.Fatalf("ByDestination: %v", err)
	}

	in := db.lastQuery
	if got := aws.ToString(in.IndexName); got != "DestinationIdIndex" {
		t.Fatalf("IndexName = %q", got)
	}
	if got := aws.ToString(in.KeyConditionExpression); got != "Destination = :id" {
		t.Fatalf("KeyConditionExpression = %q", got)
	}
	val, ok := in.ExpressionAttributeValues[":id"].(*types.AttributeValueMemberS)
	if !ok || val.Value != "a@b.com" {
		t.Fatalf("ExpressionAttributeValues[:id] = %v", in.ExpressionAttributeValues[":id"])
	}
}

func TestQueryNoResults(t *testing.T) {
	db := &fakeDynamo{}
	s := newTestQueryService(t, db)

	res, err := s.ByMessageID(context.Background(), "missing", nil)
	if err != nil {
		t.Fatalf("ByMessageID: %v", err)
	}
	if res.Success {
		t.Fatal("Success = true for empty result")
	}
	if res.Message != "No results found" {
		t.Fatalf("Message = %q", res.Message)
	}
	if len(res.Data) != 0 {
		t.Fatalf("len(Data) = %d, want 0", len(res.Data))
	}
}

func TestQueryPagination(t *testing.T) {
	db := &fakeDynamo{queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		return &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				logItem("msg-1", "2023-05-01T10:00:07.000Z", "a@b.com", "BOUNCE"),
			},
			LastEvaluatedKey: logItem("msg-1", "2023-05-01T10:00:07.000Z", "a@b.com", "BOUNCE"),
		}, nil
	}}
	s := newTestQueryService(t, db)

	res, err := s.ByMessageID(context.Background(), "msg-1", nil)
	if err != nil {
		t.Fatalf("ByMessageID: %v", err)
	}
	if !res.MorePages {
		t.Fatal("MorePages = false with a LastEvaluatedKey")
	}
	if res.LastEvaluatedKey["MessageId"] != "msg-1" || res.LastEvaluatedKey["LogTime"] != "2023-05-01T10:00:07.000Z" {
		t.Fatalf("LastEvaluatedKey = %v", res.LastEvaluatedKey)
	}

	// Echo the cursor back and check it reaches the store untouched.
	if _, err := s.ByMessageID(context.Background(), "msg-1", res.LastEvaluatedKey); err != nil {
		t.Fatalf("ByMessageID with cursor: %v", err)
	}
	start := db.lastQuery.ExclusiveStartKey
	if start == nil {
		t.Fatal("ExclusiveStartKey not set from cursor")
	}
	got, ok := start["LogTime"].(*types.AttributeValueMemberS)
	if !ok || got.Value != "2023-05-01T10:00:07.000Z" {
		t.Fatalf("ExclusiveStartKey[LogTime] = %v", start["LogTime"])
	}
}

func TestQueryStoreError(t *testing.T) {
	db := &fakeDynamo{queryFn: func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
		return nil, errors.New("unavailable")
	}}
	s := newTestQueryService(t, db)

	if _, err := s.ByMessageID(context.Background(), "msg-1", nil); err == nil {
		t.Fatal("expected error from store failure")
	}
}
