// Package filter applies go-bexpr boolean expressions to list results.
//
// Expressions address the JSON form of each item, so a report list accepts
// `weather == "rain"` and a transaction list accepts
// `status == "PENDING" and requestedBy.name == "Sari"`.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of compiled expressions kept.
const DefaultCacheSize = 256

// ErrInvalidExpression is returned for a filter that does not parse.
var ErrInvalidExpression = errors.New("invalid filter expression")

// Filter compiles and caches expressions.
type Filter struct {
	cache *lru.Cache[string, *bexpr.Evaluator]
}

// New creates a filter with an LRU of compiled evaluators.
func New(cacheSize int) (*Filter, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *bexpr.Evaluator](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create filter cache: %w", err)
	}
	return &Filter{cache: cache}, nil
}

// evaluator compiles expr, reusing a cached evaluator when possible. A nil
// Filter compiles every time.
func (f *Filter) evaluator(expr string) (*bexpr.Evaluator, error) {
	if f != nil {
		if cached, ok := f.cache.Get(expr); ok {
			return cached, nil
		}
	}
	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	if f != nil {
		f.cache.Add(expr, evaluator)
	}
	return evaluator, nil
}

// Validate reports whether expr compiles. An empty expression is valid.
func (f *Filter) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := f.evaluator(expr)
	return err
}

// Apply returns the items matching expr. An empty expression keeps every item.
// Items that cannot be evaluated, for example because a referenced key is
// missing, do not match.
func Apply[T any](f *Filter, expr string, items []T) ([]T, error) {
	if strings.TrimSpace(expr) == "" {
		return items, nil
	}
	evaluator, err := f.evaluator(expr)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		doc, err := toDocument(item)
		if err != nil {
			return nil, err
		}
		ok, err := evaluator.Evaluate(doc)
		if err != nil || !ok {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func toDocument(item any) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode filter document: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode filter document: %w", err)
	}
	return doc, nil
}
