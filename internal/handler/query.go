package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"email-api/internal/apierr"
	"email-api/internal/emaillog"
)

// LogQuerier runs reverse-chronological log lookups.
type LogQuerier interface {
	ByMessageID(ctx context.Context, messageID string, startKey map[string]string) (*emaillog.QueryResult, error)
	ByDestination(ctx context.Context, destination string, startKey map[string]string) (*emaillog.QueryResult, error)
}

// QueryHandler serves log lookups by message id or destination, selected by
// the resource path the request arrived on.
type QueryHandler struct {
	logs LogQuerier
	log  zerolog.Logger
}

func NewQueryHandler(logs LogQuerier, log zerolog.Logger) *QueryHandler {
	return &QueryHandler{logs: logs, log: log}
}

// Handle runs one lookup. An empty result is returned as a structured
// envelope, not an error; absence of logs is not a fault.
func (h *QueryHandler) Handle(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	requestID := req.Context.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	result, err := h.runQuery(ctx, req)
	if err != nil {
		h.log.Error().Err(err).Str("requestId", requestID).Str("resourcePath", req.Context.ResourcePath).Msg("query failed")
		code := http.StatusInternalServerError
		var vErr *apierr.ValidationError
		if errors.As(err, &vErr) {
			code = http.StatusBadRequest
		}
		return nil, apierr.New(err.Error(), code, requestID, "")
	}

	return &QueryResponse{QueryResult: *result, RequestID: requestID}, nil
}

func (h *QueryHandler) runQuery(ctx context.Context, req QueryRequest) (*emaillog.QueryResult, error) {
	// Route on the resource path the gateway reports. When a path somehow
	// matches both, destination wins.
	mode := ""
	if strings.Contains(req.Context.ResourcePath, "message-id") {
		mode = "messageId"
	}
	if strings.Contains(req.Context.ResourcePath, "destination") {
		mode = "destination"
	}
	if mode == "" {
		return nil, errors.New("invalid path")
	}

	messageID, err := url.QueryUnescape(req.Params.MessageID)
	if err != nil {
		return nil, apierr.NewValidation("malformed messageid parameter")
	}
	destination, err := url.QueryUnescape(req.Params.Destination)
	if err != nil {
		return nil, apierr.NewValidation("malformed destination parameter")
	}
	startKey, err := decodeStartKey(req.Params.ExclusiveStartKey)
	if err != nil {
		return nil, err
	}

	switch mode {
	case "messageId":
		if messageID == "" {
			return nil, apierr.NewValidation("messageid parameter is required")
		}
		return h.logs.ByMessageID(ctx, messageID, startKey)
	default:
		if destination == "" {
			return nil, apierr.NewValidation("destination parameter is required")
		}
		if !isValidEmail(destination) {
			return nil, apierr.NewValidation("a valid email address destination is required")
		}
		return h.logs.ByDestination(ctx, destination, startKey)
	}
}

// decodeStartKey unpacks the opaque pagination cursor: a URL-encoded JSON
// object as handed out by a previous page.
func decodeStartKey(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, apierr.NewValidation("malformed exclusivestartkey parameter")
	}
	var key map[string]string
	if err := json.Unmarshal([]byte(decoded), &key); err != nil {
		return nil, apierr.NewValidation("malformed exclusivestartkey parameter")
	}
	return key, nil
}
