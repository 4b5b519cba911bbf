package response

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/eelloooii/json-response-standard/pkg/errors"
	"github.com/eelloooii/json-response-standard/pkg/types"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate checks a decoded envelope against the envelope invariants.
func (b *Builder) Validate(env types.Envelope) error {
	if err := b.validate.Struct(env); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range errs {
			if fieldErr.Field() == "status" {
				return pkgerrors.NewPublic(pkgerrors.CodeInvalidStatus).
					WithDetails(map[string]any{"status": fieldErr.Value()})
			}
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "envelope validation failed")
}

// Decode parses a serialized envelope. Numbers inside data keep their
// textual form.
func Decode(raw []byte) (types.Envelope, error) {
	var env types.Envelope
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return types.Envelope{}, pkgerrors.Wrap(pkgerrors.CodeSerialization, err, "failed to decode JSON")
	}
	return env, nil
}

// Reformat decodes a serialized envelope, re-checks it and encodes it again
// with the canonical layout. Reformat(Reformat(x)) == Reformat(x).
func (b *Builder) Reformat(raw []byte) (string, error) {
	env, err := Decode(raw)
	if err != nil {
		return "", err
	}
	if err := b.Validate(env); err != nil {
		return "", err
	}
	return b.BuildValues(env.Data, env.Status, env.Message)
}
