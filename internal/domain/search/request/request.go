package request

import (
	"fmt"
	"strconv"

	"github.com/kailas-cloud/mathdex/internal/domain/question"
	"github.com/kailas-cloud/mathdex/internal/domain/search/filter"
)

// Search parameter limits.
const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxQueryLength is the maximum allowed search text length.
	MaxQueryLength = question.MaxTextLength
	// MaxExcludeIDs bounds distinct excluded ids; they are split across must_not conditions.
	MaxExcludeIDs = filter.MaxConditionsPerGroup * filter.MaxValuesPerCondition
)

// Filter narrows a similarity search. The zero value matches everything.
type Filter struct {
	Grade      *int
	Topic      string
	Operation  string
	ExcludeIDs []string
	Limit      int // number of neighbors, DefaultLimit when <= 0
}

// EffectiveLimit returns the neighbor count, defaulted and clamped to MaxLimit.
func (f *Filter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

// WithLimit returns a copy of f with Limit replaced.
func (f Filter) WithLimit(limit int) Filter {
	f.Limit = limit
	return f
}

// Expression converts the filter into a store-agnostic predicate:
// supplied equality constraints are ANDed, excluded ids are negated.
func (f *Filter) Expression() (filter.Expression, error) {
	var must, mustNot []filter.Condition

	if f.Grade != nil {
		if *f.Grade < 0 {
			return filter.Expression{}, fmt.Errorf("grade must be non-negative")
		}
		c, err := filter.NewMatch(question.FieldGrade, strconv.Itoa(*f.Grade))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("grade: %w", err)
		}
		must = append(must, c)
	}
	if f.Topic != "" {
		c, err := filter.NewMatch(question.FieldTopic, f.Topic)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("topic: %w", err)
		}
		must = append(must, c)
	}
	if f.Operation != "" {
		c, err := filter.NewMatch(question.FieldOperation, f.Operation)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("operation: %w", err)
		}
		must = append(must, c)
	}
	ids := dedupe(f.ExcludeIDs)
	if len(ids) > MaxExcludeIDs {
		return filter.Expression{}, fmt.Errorf("exclude_ids: too many ids (max %d)", MaxExcludeIDs)
	}
	for start := 0; start < len(ids); start += filter.MaxValuesPerCondition {
		end := min(start+filter.MaxValuesPerCondition, len(ids))
		c, err := filter.NewMatchAny(question.FieldID, ids[start:end]...)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("exclude_ids: %w", err)
		}
		mustNot = append(mustNot, c)
	}

	return filter.NewExpression(must, mustNot)
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
