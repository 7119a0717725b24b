package jsonschema

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Retriever fetches the JSON Schema document named by a canonical
// (fragment-free) URI. It is invoked at most once per URI (spec.md §6),
// never for built-in meta-schema URIs, the dummy base, or urn: schemes.
type Retriever func(uri string) (Value, error)

// NoRetriever rejects every lookup; used when a Compiler is built without
// external-reference support, so a stray $ref fails fast with
// ErrUnresolvedReference rather than blocking forever.
func NoRetriever(uri string) (Value, error) {
	return nil, fmt.Errorf("%w: %s: no retriever configured", ErrUnresolvedReference, uri)
}

// MapRetriever serves documents from an in-memory map, the common case in
// tests and for statically bundled schema sets.
func MapRetriever(docs map[string]Value) Retriever {
	return func(uri string) (Value, error) {
		if v, ok := docs[uri]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedReference, uri)
	}
}

// HTTPRetriever fetches documents over HTTP(S), decoding JSON or YAML by
// sniffing the URI's file extension — the same convenience the teacher
// wires into Compiler.setupLoaders, generalized here to also accept YAML
// registry documents via goccy/go-yaml (SPEC_FULL.md §2 ambient stack).
func HTTPRetriever(client *http.Client) Retriever {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return func(uri string) (Value, error) {
		resp, err := client.Get(uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNetworkFetch, uri, err)
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %s: status %d", ErrInvalidStatusCode, uri, resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDataRead, uri, err)
		}
		return decodeRetrieved(uri, data)
	}
}

func decodeRetrieved(uri string, data []byte) (Value, error) {
	if strings.HasSuffix(uri, ".yaml") || strings.HasSuffix(uri, ".yml") {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrYAMLUnmarshal, uri, err)
		}
		return yamlToValue(v), nil
	}
	v, err := decodeValue(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrJSONUnmarshal, uri, err)
	}
	return v, nil
}

// yamlToValue normalizes goccy/go-yaml's decoded map[string]interface{}
// (and numeric types) into this module's Value representation so YAML- and
// JSON-sourced documents compile identically.
func yamlToValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = yamlToValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = yamlToValue(val)
		}
		return out
	case int:
		return Number{Kind: kindInt64, I64: int64(t), F64: float64(t)}
	case int64:
		return Number{Kind: kindInt64, I64: t, F64: float64(t)}
	case uint64:
		return Number{Kind: kindUint64, U64: t, F64: float64(t)}
	case float64:
		return Number{Kind: kindFloat64, F64: t}
	default:
		return v
	}
}
