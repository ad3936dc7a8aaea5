package emaillog

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// QueryResult is the paged envelope returned for a lookup. An empty page is
// not an error: Success is false and Message says so.
type QueryResult struct {
	Success          bool              `json:"success"`
	Data             []Record          `json:"data"`
	Message          string            `json:"message,omitempty"`
	LastEvaluatedKey map[string]string `json:"lastEvaluatedKey,omitempty"`
	MorePages        bool              `json:"morePages,omitempty"`
}

type QueryConfig struct {
	TableName        string
	DestinationIndex string
	// UTCOffset is the fixed display offset for the derived LocalTime
	// field, e.g. "+07:00".
	UTCOffset string
}

// QueryService runs reverse-chronological lookups by message id or
// destination and annotates results with a display-local time.
type QueryService struct {
	db  DynamoAPI
	cfg QueryConfig
	loc *time.Location
	log zerolog.Logger
}

func NewQueryService(db DynamoAPI, cfg QueryConfig, log zerolog.Logger) (*QueryService, error) {
	loc, err := ParseOffset(cfg.UTCOffset)
	if err != nil {
		return nil, err
	}
	return &QueryService{db: db, cfg: cfg, loc: loc, log: log}, nil
}

// ByMessageID returns the records for one message id, most recent first.
// A non-empty startKey continues a previous page.
func (s *QueryService) ByMessageID(ctx context.Context, messageID string, startKey map[string]string) (*QueryResult, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.cfg.TableName),
		KeyConditionExpression: aws.String("MessageId = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: messageID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if len(startKey) > 0 {
		in.ExclusiveStartKey = keyFromCursor(startKey)
	}
	return s.run(ctx, in)
}

// ByDestination returns the records for one destination address via the
// secondary index, most recent first.
func (s *QueryService) ByDestination(ctx context.Context, destination string, startKey map[string]string) (*QueryResult, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.cfg.TableName),
		IndexName:              aws.String(s.cfg.DestinationIndex),
		KeyConditionExpression: aws.String("Destination = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: destination},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if len(startKey) > 0 {
		in.ExclusiveStartKey = keyFromCursor(startKey)
	}
	return s.run(ctx, in)
}

func (s *QueryService) run(ctx context.Context, in *dynamodb.QueryInput) (*QueryResult, error) {
	out, err := s.db.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.cfg.TableName, err)
	}

	result := &QueryResult{Data: []Record{}}
	if len(out.Items) == 0 {
		result.Message = "No results found"
		return result, nil
	}

	var records []Record
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, fmt.Errorf("unmarshal query items: %w", err)
	}
	for i := range records {
		records[i].LocalTime = localTime(records[i].LogTime, s.loc)
	}

	if len(out.LastEvaluatedKey) > 0 {
		result.LastEvaluatedKey = cursorFromKey(out.LastEvaluatedKey)
		result.MorePages = true
	}
	result.Data = records
	result.Success = true
	s.log.Debug().Int("count", len(records)).Bool("morePages", result.MorePages).Msg("query page")
	return result, nil
}

// Both key schemas are all-string attributes, so the pagination cursor
// travels as a plain string map and is rebuilt at the store boundary.

func keyFromCursor(cursor map[string]string) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, len(cursor))
	for name, value := range cursor {
		key[name] = &types.AttributeValueMemberS{Value: value}
	}
	return key
}

func cursorFromKey(key map[string]types.AttributeValue) map[string]string {
	cursor := make(map[string]string, len(key))
	for name, attr := range key {
		if s, ok := attr.(*types.AttributeValueMemberS); ok {
			cursor[name] = s.Value
		}
	}
	return cursor
}
