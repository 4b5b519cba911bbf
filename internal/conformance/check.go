package conformance

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	pkgerrors "github.com/eelloooii/json-response-standard/pkg/errors"
	"github.com/eelloooii/json-response-standard/pkg/response"
)

var reformatter = response.New()

// Check runs a single case against a binding.
func Check(b Binding, c Case) error {
	out, err := b.Build(c.Data, c.Status, c.Message)
	if c.Expect.wantsError() {
		return checkError(c.Expect, err)
	}
	if err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return checkOutput(c.Expect, out)
}

func checkError(want Expect, err error) error {
	if err == nil {
		return fmt.Errorf("should return %s error", want.Error)
	}
	if !pkgerrors.HasCode(err, pkgerrors.Code(want.Error)) {
		return fmt.Errorf("expected %s error, got %v", want.Error, err)
	}
	if want.Contains != "" && !strings.Contains(err.Error(), want.Contains) {
		return fmt.Errorf("error %q should contain %q", err.Error(), want.Contains)
	}
	return nil
}

func checkOutput(want Expect, out string) error {
	if want.Exact != "" && out != want.Exact {
		return fmt.Errorf("output mismatch:\n%s\nwant:\n%s", out, want.Exact)
	}
	for _, fragment := range want.OutputContains {
		if !strings.Contains(out, fragment) {
			return fmt.Errorf("output should contain %q:\n%s", fragment, out)
		}
	}

	var parsed struct {
		Status  *int    `json:"status"`
		Message *string `json:"message"`
		Data    any     `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return fmt.Errorf("failed to parse JSON: %v", err)
	}
	if parsed.Status == nil || parsed.Message == nil {
		return fmt.Errorf("envelope is missing status or message: %s", out)
	}
	if want.Status != nil && *parsed.Status != *want.Status {
		return fmt.Errorf("status should be %d, got %d", *want.Status, *parsed.Status)
	}
	if want.Message != nil && *parsed.Message != *want.Message {
		return fmt.Errorf("message should be %q, got %q", *want.Message, *parsed.Message)
	}
	if want.Data != nil {
		expected, err := normalize(want.Data)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(parsed.Data, expected) {
			return fmt.Errorf("data should be %v, got %v", expected, parsed.Data)
		}
	}
	for _, pc := range want.Paths {
		if err := checkPath(parsed.Data, pc); err != nil {
			return err
		}
	}
	if want.RoundTrip {
		again, err := reformatter.Reformat([]byte(out))
		if err != nil {
			return fmt.Errorf("re-encode failed: %v", err)
		}
		if again != out {
			return fmt.Errorf("serialization is not stable:\n%s\nre-encoded:\n%s", out, again)
		}
	}
	return nil
}

func checkPath(data any, pc PathCheck) error {
	got, err := lookup(data, pc.Path)
	if err != nil {
		return err
	}
	expected, err := normalize(pc.Equals)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(got, expected) {
		return fmt.Errorf("data.%s should be %v, got %v", pc.Path, expected, got)
	}
	return nil
}

func lookup(data any, path string) (any, error) {
	cur := data
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("data.%s: missing key %q", path, seg)
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("data.%s: bad index %q", path, seg)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("data.%s: cannot descend into %T", path, cur)
		}
	}
	return cur, nil
}

// normalize gives YAML-decoded values the shape json.Unmarshal produces.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("normalize expectation: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize expectation: %w", err)
	}
	return out, nil
}
