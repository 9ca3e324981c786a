package gateway

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/statscard/statscard/internal/apperr"
	"github.com/statscard/statscard/internal/sl"
)

// maxErrorLineWidth bounds upstream error messages to what the error card
// can render on one line.
const maxErrorLineWidth = 90

// Classify inspects a successful response body for a top-level errors
// array and maps known shapes to typed application errors. On success the
// data payload passes through unchanged.
//
// A query that addresses several root fields (user plus organization) can
// return NOT_FOUND entries next to usable data; those partial errors are
// not fatal, so classification only fires when the payload carries no
// data at all.
func Classify(logger *slog.Logger, resp *Response, notFoundMsg, notFoundHint string) (json.RawMessage, error) {
	env := resp.Envelope()

	if len(env.Errors) == 0 || hasData(env.Data) {
		return env.Data, nil
	}

	first := env.Errors[0]
	var err *apperr.Error
	switch {
	case first.Type == "NOT_FOUND":
		msg := first.Message
		if msg == "" {
			msg = notFoundMsg
		}
		err = apperr.NotFound(msg, notFoundHint)
	case first.Message != "":
		err = apperr.GraphQL(firstLine(first.Message, maxErrorLineWidth))
	default:
		err = apperr.GraphQL("Something went wrong while processing the GraphQL response")
	}

	logger.Error("github graphql query failed",
		slog.String("type", first.Type),
		sl.Err(err),
	)
	return nil, err
}

// hasData reports whether the data payload contains at least one non-null
// root field.
func hasData(data json.RawMessage) bool {
	if len(data) == 0 || string(data) == "null" {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false
	}
	for _, v := range fields {
		if string(v) != "null" {
			return true
		}
	}
	return false
}

// firstLine returns the first line of s word-wrapped to at most width
// characters.
func firstLine(s string, width int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if len(s) <= width {
		return s
	}
	if i := strings.LastIndexByte(s[:width+1], ' '); i > 0 {
		return s[:i]
	}
	return s[:width]
}
