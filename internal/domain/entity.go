package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Entity is a catalog record. The engine treats it as read-only input: the
// storage collaborator owns its lifecycle, the engine only reads the data
// document and the parent edges.
type Entity struct {
	UID     uuid.UUID      `json:"uid"`
	Ref     EntityRef      `json:"ref"`
	Parents []EntityRef    `json:"parentEntityRefs,omitempty"`
	Data    map[string]any `json:"data"`
}

// NewEntity builds an entity with a fresh UID and a copy of the data document.
func NewEntity(ref EntityRef, data map[string]any, parents ...EntityRef) Entity {
	return Entity{
		UID:     uuid.New(),
		Ref:     ref,
		Parents: append([]EntityRef(nil), parents...),
		Data:    copyData(data),
	}
}

// GetDataAsJSON marshals the data document for persistence.
func (e *Entity) GetDataAsJSON() (json.RawMessage, error) {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	return json.Marshal(e.Data)
}

// FromJSONData decodes a persisted data document.
func FromJSONData(dataJSON json.RawMessage) (map[string]any, error) {
	var data map[string]any
	err := json.Unmarshal(dataJSON, &data)
	return data, err
}

// SearchPairs flattens the data document into the indexed key/value
// projection that filters and facets operate on. Keys are lower-cased dotted
// paths; array elements contribute one value each under the array's key.
// Values keep their original case, comparisons fold later.
func (e Entity) SearchPairs() map[string][]string {
	pairs := make(map[string][]string)
	flattenInto(pairs, "", e.Data)
	return pairs
}

// Values returns every projected value for a dotted field path, looked up
// case-insensitively. A nil result means the field is absent.
func (e Entity) Values(path string) []string {
	return e.SearchPairs()[strings.ToLower(path)]
}

// Value returns the first projected value for a field path, or nil when the
// field is absent. Ordering uses this single-value form.
func (e Entity) Value(path string) *string {
	values := e.Values(path)
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

// Project returns a copy of the entity whose data document is pruned to the
// requested dotted field paths. An empty selection keeps the full document.
// The selection is declarative data, never executable code, so it can cross
// process boundaries inside requests.
func (e Entity) Project(fields []string) Entity {
	if len(fields) == 0 {
		return e
	}

	projected := Entity{
		UID:     e.UID,
		Ref:     e.Ref,
		Parents: append([]EntityRef(nil), e.Parents...),
		Data:    make(map[string]any),
	}
	for _, field := range fields {
		parts := strings.Split(strings.TrimSpace(field), ".")
		if len(parts) == 0 || parts[0] == "" {
			continue
		}
		copyPath(projected.Data, e.Data, parts)
	}
	return projected
}

func copyPath(dst, src map[string]any, path []string) {
	key, value, ok := lookupFold(src, path[0])
	if !ok {
		return
	}

	if len(path) == 1 {
		dst[key] = value
		return
	}

	child, ok := value.(map[string]any)
	if !ok {
		return
	}
	existing, ok := dst[key].(map[string]any)
	if !ok {
		existing = make(map[string]any)
		dst[key] = existing
	}
	copyPath(existing, child, path[1:])
}

// lookupFold finds a map entry by case-insensitive key, returning the
// original key spelling.
func lookupFold(m map[string]any, key string) (string, any, bool) {
	if value, ok := m[key]; ok {
		return key, value, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return k, v, true
		}
	}
	return "", nil, false
}

func flattenInto(pairs map[string][]string, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := strings.ToLower(k)
			if prefix != "" {
				key = prefix + "." + key
			}
			flattenInto(pairs, key, v[k])
		}
	case []any:
		for _, item := range v {
			flattenInto(pairs, prefix, item)
		}
	case nil:
		// absent, contributes nothing
	default:
		if prefix == "" {
			return
		}
		pairs[prefix] = append(pairs[prefix], stringifyScalar(v))
	}
}

func stringifyScalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// copyData creates a shallow copy of the data document. Values are shared;
// the engine never mutates them.
func copyData(data map[string]any) map[string]any {
	newData := make(map[string]any, len(data))
	for k, v := range data {
		newData[k] = v
	}
	return newData
}
