// Package response builds the standard {status, message, data} JSON envelope.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/eelloooii/json-response-standard/pkg/errors"
	"github.com/eelloooii/json-response-standard/pkg/metrics"
	"github.com/eelloooii/json-response-standard/pkg/types"
)

const (
	indent     = "  "
	statusRule = "gte=100,lte=599"
)

type Policy string

const (
	// PolicyPermissive passes any non-null payload through unchanged.
	PolicyPermissive Policy = "permissive"
	// PolicyStrict rejects payloads that are not a mapping.
	PolicyStrict Policy = "strict"
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyPermissive:
		return PolicyPermissive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	}
	return "", fmt.Errorf("unknown policy %q (want permissive or strict)", value)
}

// Builder validates inputs and serializes envelopes. It is immutable after
// New and safe for concurrent use.
type Builder struct {
	policy   Policy
	metrics  *metrics.BuildMetrics
	validate *validator.Validate
}

type Option func(*Builder)

func WithPolicy(p Policy) Option {
	return func(b *Builder) {
		if p != "" {
			b.policy = p
		}
	}
}

func WithMetrics(m *metrics.BuildMetrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

func New(opts ...Option) *Builder {
	b := &Builder{
		policy:   PolicyPermissive,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Policy() Policy {
	return b.policy
}

// Build serializes data, status and message into an indented envelope.
// A nil data payload becomes an empty object.
func (b *Builder) Build(data any, status int, message string) (string, error) {
	return b.BuildValues(data, status, message)
}

// Default builds the envelope with every argument omitted.
func (b *Builder) Default() (string, error) {
	return b.BuildValues(nil, nil, nil)
}

// BuildValues is the untyped form of Build for inputs decoded from JSON,
// YAML or another binding. A nil status means 200 and a nil message means "".
// Inputs are checked in the order status, message, data; the first failure
// is returned.
func (b *Builder) BuildValues(data, status, message any) (string, error) {
	out, err := b.build(data, status, message)
	if err != nil {
		b.metrics.ObserveFailure(string(pkgerrors.As(err).Code()))
		return "", err
	}
	b.metrics.ObserveSuccess(len(out))
	return out, nil
}

func (b *Builder) build(data, status, message any) (string, error) {
	code, err := b.statusCode(status)
	if err != nil {
		return "", err
	}
	text, err := messageText(message)
	if err != nil {
		return "", err
	}
	payload, err := b.payload(data)
	if err != nil {
		return "", err
	}
	return encode(types.Envelope{
		Status:  code,
		Message: text,
		Data:    payload,
	})
}

func (b *Builder) statusCode(status any) (int, error) {
	if status == nil {
		return types.DefaultStatus, nil
	}
	n, ok := integerValue(status)
	if !ok {
		return 0, pkgerrors.NewPublic(pkgerrors.CodeInvalidStatus).
			WithDetails(map[string]any{"status": fmt.Sprintf("%v", status), "type": fmt.Sprintf("%T", status)})
	}
	if err := b.validate.Var(n, statusRule); err != nil {
		return 0, pkgerrors.NewPublic(pkgerrors.CodeInvalidStatus).
			WithDetails(map[string]any{"status": n})
	}
	return int(n), nil
}

func messageText(message any) (string, error) {
	switch m := message.(type) {
	case nil:
		return types.DefaultMessage, nil
	case string:
		return m, nil
	case json.Number:
	default:
		if v := reflect.ValueOf(m); v.Kind() == reflect.String {
			return v.String(), nil
		}
	}
	return "", pkgerrors.NewPublic(pkgerrors.CodeInvalidMessage).
		WithDetails(map[string]any{"type": fmt.Sprintf("%T", message)})
}

// payload classifies data by its JSON encoding, not its Go kind.
func (b *Builder) payload(data any) (any, error) {
	raw, err := marshalPayload(data)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return types.EmptyData(), nil
	}
	if b.policy == PolicyStrict && !isObject(raw) {
		return nil, pkgerrors.NewPublic(pkgerrors.CodeInvalidData).
			WithDetails(map[string]any{"type": fmt.Sprintf("%T", data)})
	}
	return raw, nil
}

func marshalPayload(data any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, serializationError(err)
	}
	return json.RawMessage(bytes.TrimSpace(buf.Bytes())), nil
}

func encode(env types.Envelope) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(env); err != nil {
		return "", serializationError(err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func serializationError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeSerialization, err, pkgerrors.MetadataFor(pkgerrors.CodeSerialization).PublicMessage)
}

var defaultBuilder = New()

// JSON builds an envelope with the shared permissive builder.
func JSON(data any, status int, message string) (string, error) {
	return defaultBuilder.Build(data, status, message)
}

// Default returns {"status": 200, "message": "", "data": {}}.
func Default() (string, error) {
	return defaultBuilder.Default()
}
