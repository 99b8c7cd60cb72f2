package ovs

import (
	"fmt"

	"github.com/google/uuid"
)

// OVSDB wire values inside JSON output are either plain scalars or tagged
// two-element arrays: ["uuid", "..."], ["set", [...]], ["map", [[k, v], ...]].

func wireString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func tagged(v any, tag string) (any, bool) {
	pair, ok := v.([]any)
	if !ok || len(pair) != 2 {
		return nil, false
	}
	if t, ok := pair[0].(string); !ok || t != tag {
		return nil, false
	}
	return pair[1], true
}

func wireUUID(v any) (uuid.UUID, error) {
	inner, ok := tagged(v, "uuid")
	if !ok {
		return uuid.UUID{}, fmt.Errorf("not a uuid value: %v", v)
	}
	s, err := wireString(inner)
	if err != nil {
		return uuid.UUID{}, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid uuid %q: %v", s, err)
	}
	return id, nil
}

// wireUUIDSet accepts either a single uuid value or a set of them; OVS
// collapses one-element sets to the bare value.
func wireUUIDSet(v any) ([]uuid.UUID, error) {
	if inner, ok := tagged(v, "set"); ok {
		elems, ok := inner.([]any)
		if !ok {
			return nil, fmt.Errorf("malformed set value: %v", v)
		}
		ids := make([]uuid.UUID, 0, len(elems))
		for _, e := range elems {
			id, err := wireUUID(e)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	id, err := wireUUID(v)
	if err != nil {
		return nil, err
	}
	return []uuid.UUID{id}, nil
}

func wireMap(v any) (map[string]string, error) {
	inner, ok := tagged(v, "map")
	if !ok {
		return nil, fmt.Errorf("not a map value: %v", v)
	}
	entries, ok := inner.([]any)
	if !ok {
		return nil, fmt.Errorf("malformed map value: %v", v)
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		kv, ok := e.([]any)
		if !ok || len(kv) != 2 {
			return nil, fmt.Errorf("malformed map entry: %v", e)
		}
		key, err := wireString(kv[0])
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		// values are stringly typed in external_ids; anything else is
		// coerced rather than rejected
		m[key] = fmt.Sprintf("%v", kv[1])
	}
	return m, nil
}
