package chi

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// SimilarParams are the query parameters of GET /v1/questions/similar.
// Optional parameters are pointers, as the runtime binder expects.
type SimilarParams struct {
	Text       string
	Grade      *int
	Topic      *string
	Operation  *string
	ExcludeIDs *[]string
	Limit      *int
}

// bindSimilarParams binds form-style, exploded query parameters
// (?exclude_ids=a&exclude_ids=b).
func bindSimilarParams(query url.Values) (SimilarParams, error) {
	var p SimilarParams

	if err := runtime.BindQueryParameter("form", true, true, "text", query, &p.Text); err != nil {
		return SimilarParams{}, fmt.Errorf("invalid format for parameter text: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "grade", query, &p.Grade); err != nil {
		return SimilarParams{}, fmt.Errorf("invalid format for parameter grade: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "topic", query, &p.Topic); err != nil {
		return SimilarParams{}, fmt.Errorf("invalid format for parameter topic: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "operation", query, &p.Operation); err != nil {
		return SimilarParams{}, fmt.Errorf("invalid format for parameter operation: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "exclude_ids", query, &p.ExcludeIDs); err != nil {
		return SimilarParams{}, fmt.Errorf("invalid format for parameter exclude_ids: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &p.Limit); err != nil {
		return SimilarParams{}, fmt.Errorf("invalid format for parameter limit: %w", err)
	}
	return p, nil
}

func (p *SimilarParams) request() SimilarRequest {
	req := SimilarRequest{Text: p.Text, Grade: p.Grade}
	if p.Topic != nil {
		req.Topic = *p.Topic
	}
	if p.Operation != nil {
		req.Operation = *p.Operation
	}
	if p.ExcludeIDs != nil {
		req.ExcludeIDs = *p.ExcludeIDs
	}
	if p.Limit != nil {
		req.Limit = *p.Limit
	}
	return req
}
