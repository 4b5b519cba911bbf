package conformance

import (
	"fmt"

	"github.com/eelloooii/json-response-standard/pkg/response"
)

// Binding is one implementation of the envelope contract under test.
type Binding interface {
	Name() string
	Policy() response.Policy
	Build(data, status, message any) (string, error)
}

type BuilderBinding struct {
	name    string
	builder *response.Builder
}

func NewBuilderBinding(builder *response.Builder) BuilderBinding {
	return BuilderBinding{
		name:    fmt.Sprintf("go/%s", builder.Policy()),
		builder: builder,
	}
}

func (b BuilderBinding) Name() string {
	return b.name
}

func (b BuilderBinding) Policy() response.Policy {
	return b.builder.Policy()
}

func (b BuilderBinding) Build(data, status, message any) (string, error) {
	return b.builder.BuildValues(data, status, message)
}
