package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	pkgerrors "github.com/eelloooii/json-response-standard/pkg/errors"
	"github.com/eelloooii/json-response-standard/pkg/response"
)

type buildOptions struct {
	data    string
	status  string
	message string
	strict  bool
}

func newBuildCmd(a *app) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Print the envelope for the given data, status and message",
		Example: `  jsonresponse build --data '{"user":"John"}' --status 200 --message Success
  echo '[1,2]' | jsonresponse build --data - --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.data, "data", "", "JSON payload, @file to read a file, or - for stdin")
	flags.StringVar(&opts.status, "status", "", "status code (default 200)")
	flags.StringVar(&opts.message, "message", "", "human-readable message")
	flags.BoolVar(&opts.strict, "strict", false, "reject payloads that are not a JSON object")
	return cmd
}

func (a *app) runBuild(cmd *cobra.Command, opts *buildOptions) error {
	policy := response.PolicyPermissive
	if opts.strict || a.cfg.Builder.Strict() {
		policy = response.PolicyStrict
	}
	builder := response.New(response.WithPolicy(policy))

	var data, status, message any
	if cmd.Flags().Changed("data") {
		raw, err := readPayload(opts.data, cmd.InOrStdin())
		if err != nil {
			return err
		}
		data = raw
	}
	if cmd.Flags().Changed("status") {
		status = parseScalar(opts.status)
	}
	if cmd.Flags().Changed("message") {
		message = opts.message
	}

	out, err := builder.BuildValues(data, status, message)
	if err != nil {
		ctx := a.logg.WithFields(cmd.Context(), pkgerrors.Dump(err).Fields())
		a.logg.Debug(ctx, "build rejected")
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// readPayload returns the payload as raw JSON so the builder sees the
// caller's bytes, not a re-typed copy.
func readPayload(arg string, stdin io.Reader) (json.RawMessage, error) {
	var raw []byte
	var err error
	switch {
	case arg == "-":
		raw, err = io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		raw, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		raw = []byte(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !json.Valid(raw) {
		return nil, pkgerrors.New(pkgerrors.CodeSerialization, "payload is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// parseScalar reads a flag value as JSON so numbers stay numbers and
// anything else reaches the builder as a string.
func parseScalar(value string) any {
	dec := json.NewDecoder(strings.NewReader(value))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return value
	}
	return v
}
