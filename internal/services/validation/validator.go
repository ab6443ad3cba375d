// Package validation checks request payloads against JSON schemas and decodes
// them into typed inputs.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// DefaultCacheSize bounds the compiled schema cache.
const DefaultCacheSize = 64

// ErrValidationFailed is wrapped by every payload rejection.
var ErrValidationFailed = errors.New("validation failed")

// Error describes why a payload was rejected.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation failed at '%s': %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error { return ErrValidationFailed }

// Validator validates payloads against named schemas.
type Validator interface {
	// Decode validates body against the named schema and decodes it into dst.
	Decode(schema string, body []byte, dst any) error
}

// PayloadValidator implements Validator using santhosh-tekuri/jsonschema/v6.
type PayloadValidator struct {
	schemas     map[string]string
	schemaCache *lru.Cache[string, *jsonschema.Schema]
}

// NewPayloadValidator creates a validator over the built-in request schemas.
func NewPayloadValidator(cacheSize int) (*PayloadValidator, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	schemas := make(map[string]string, len(requestSchemas))
	for name, doc := range requestSchemas {
		schemas[name] = doc
	}
	return &PayloadValidator{schemas: schemas, schemaCache: cache}, nil
}

// Register adds or replaces a named schema.
func (v *PayloadValidator) Register(name, schemaJSON string) {
	v.schemas[name] = schemaJSON
	v.schemaCache.Remove(name)
}

// Decode validates body and decodes it into dst. Numbers are decoded from
// json.Number, dates accept RFC 3339 or YYYY-MM-DD.
func (v *PayloadValidator) Decode(name string, body []byte, dst any) error {
	schema, err := v.schema(name)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return &Error{Path: "$", Message: "request body is required"}
	}
	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return &Error{Path: "$", Message: "malformed JSON"}
	}

	if err := schema.Validate(value); err != nil {
		return formatValidationError(err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(stringToTimeHook),
		Result:     dst,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return &Error{Path: "$", Message: err.Error()}
	}
	return nil
}

func (v *PayloadValidator) schema(name string) (*jsonschema.Schema, error) {
	if cached, ok := v.schemaCache.Get(name); ok {
		return cached, nil
	}
	doc, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	schema, err := compileSchema(name, doc)
	if err != nil {
		return nil, err
	}
	v.schemaCache.Add(name, schema)
	return schema, nil
}

func compileSchema(name, schemaJSON string) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	schemaURL := name + ".json"
	if err := compiler.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

// formatValidationError reports the first leaf failure with a "$.a.b" path.
func formatValidationError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Error{Path: "$", Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}

	path := "$"
	var parts []string
	for _, part := range ve.InstanceLocation {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		path = "$." + strings.Join(parts, ".")
	}

	msg := strings.TrimSpace(ve.Error())
	if i := strings.LastIndex(msg, "': "); i >= 0 {
		msg = msg[i+3:]
	}
	if len(msg) > 200 {
		msg = msg[:200] + "... (truncated)"
	}
	return &Error{Path: path, Message: msg}
}

var timeType = reflect.TypeOf(time.Time{})

func stringToTimeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	s := data.(string)
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}
