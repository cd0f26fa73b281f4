// Package file loads raw product records from catalog files on disk.
//
// JSON files may hold a single record, an array of records, an object with
// a "products" array, or one record per line (JSON Lines). YAML files may
// hold a record, a list of records or a "products" wrapper, across one or
// more documents.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pimctx/internal/core/domain"
	"github.com/custodia-labs/pimctx/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.CatalogLoader = (*Loader)(nil)

// productsKey is the wrapper key unwrapped by every format.
const productsKey = "products"

// Loader reads catalog files by extension.
type Loader struct{}

// NewLoader creates a new catalog file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// SupportedExtensions returns the file extensions this loader reads.
func (l *Loader) SupportedExtensions() []string {
	return []string{".json", ".jsonl", ".ndjson", ".yaml", ".yml"}
}

// Load decodes every record in the file at path, in file order.
func (l *Loader) Load(ctx context.Context, path string) ([]domain.ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".jsonl", ".ndjson":
		return decodeJSON(ctx, f)
	case ".yaml", ".yml":
		return decodeYAML(ctx, f)
	default:
		return nil, fmt.Errorf("%w: catalog extension %q", domain.ErrUnsupportedType, ext)
	}
}

// decodeJSON reads a stream of JSON values. A single document and JSON
// Lines are the same stream to the decoder.
func decodeJSON(ctx context.Context, r io.Reader) ([]domain.ProductRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []domain.ProductRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var value any
		err := dec.Decode(&value)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: decoding JSON catalog: %w", domain.ErrInvalidInput, err)
		}

		records, err = appendRecords(records, value)
		if err != nil {
			return nil, err
		}
	}
}

// decodeYAML reads every document of a YAML stream.
func decodeYAML(ctx context.Context, r io.Reader) ([]domain.ProductRecord, error) {
	dec := yaml.NewDecoder(r)

	var records []domain.ProductRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var value any
		err := dec.Decode(&value)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: decoding YAML catalog: %w", domain.ErrInvalidInput, err)
		}
		if value == nil {
			continue
		}

		records, err = appendRecords(records, normaliseYAML(value))
		if err != nil {
			return nil, err
		}
	}
}

// appendRecords flattens one decoded value into records.
func appendRecords(records []domain.ProductRecord, value any) ([]domain.ProductRecord, error) {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: catalog entry %d is %T, not an object",
					domain.ErrInvalidInput, len(records), item)
			}
			records = append(records, domain.ProductRecord(obj))
		}
		return records, nil

	case map[string]any:
		if wrapped, ok := v[productsKey].([]any); ok && len(v) == 1 {
			return appendRecords(records, wrapped)
		}
		return append(records, domain.ProductRecord(v)), nil

	default:
		return nil, fmt.Errorf("%w: catalog value is %T, not an object or list",
			domain.ErrInvalidInput, value)
	}
}

// normaliseYAML converts map[interface{}]interface{} nodes, which yaml.v3
// produces for non-string keys, into map[string]any.
func normaliseYAML(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = normaliseYAML(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normaliseYAML(item)
		}
		return out
	case []any:
		for i, item := range v {
			v[i] = normaliseYAML(item)
		}
		return v
	default:
		return value
	}
}
