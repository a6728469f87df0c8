// Package records is a small schemaless document store for the storefront's
// collections (products, orders, ...). Records are JSON objects keyed by "id".
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("record already exists")
	ErrInvalidRecord = errors.New("invalid record")
)

// IDField is the key every record is addressed by.
const IDField = "id"

// Record is a single JSON object.
type Record map[string]any

// Store is implemented by the file and DynamoDB backends.
type Store interface {
	// List returns the records of a collection whose fields equal every filter value.
	List(ctx context.Context, collection string, filter map[string]string) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	// Create stores rec, assigning a uuid when it has no id. ErrConflict if the id is taken.
	Create(ctx context.Context, collection string, rec Record) (Record, error)
	// Replace overwrites the record with id. The stored id always matches the path id.
	Replace(ctx context.Context, collection, id string, rec Record) (Record, error)
	// Patch merges top-level fields of patch into the record with id.
	Patch(ctx context.Context, collection, id string, patch Record) (Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// ID returns the record id as a string, or "" when absent.
func (r Record) ID() string {
	return valueString(r[IDField])
}

// Matches reports whether every filter key equals the record's field, compared as strings.
func (r Record) Matches(filter map[string]string) bool {
	for k, want := range filter {
		got, ok := r[k]
		if !ok || valueString(got) != want {
			return false
		}
	}
	return true
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// prepareCreate copies rec and assigns an id when missing.
func prepareCreate(rec Record) (Record, string, error) {
	if rec == nil {
		return nil, "", fmt.Errorf("%w: body must be an object", ErrInvalidRecord)
	}
	out := rec.clone()
	id := out.ID()
	if id == "" {
		if v, ok := out[IDField]; ok && v != nil {
			return nil, "", fmt.Errorf("%w: unsupported id %v", ErrInvalidRecord, v)
		}
		id = uuid.NewString()
		out[IDField] = id
	}
	return out, id, nil
}

// prepareReplace copies rec and pins its id to the path id.
func prepareReplace(id string, rec Record) (Record, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: body must be an object", ErrInvalidRecord)
	}
	out := rec.clone()
	if existing, ok := out[IDField]; ok && valueString(existing) == id {
		return out, nil
	}
	out[IDField] = id
	return out, nil
}

func merge(base, patch Record) Record {
	out := base.clone()
	for k, v := range patch {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
