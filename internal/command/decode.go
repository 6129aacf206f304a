package command

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"dispatch-service/internal/domain/entity"
)

// checkFields rejects payload keys outside the allowed set so a mistyped
// field never silently disappears.
func checkFields(m map[string]any, allowed ...string) error {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, field := range allowed {
		allowedSet[field] = struct{}{}
	}
	var unknown []string
	for key := range m {
		if _, ok := allowedSet[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return entity.NewValidationError("unknown fields: %s", strings.Join(unknown, ", "))
}

func requireString(m map[string]any, field string) (string, error) {
	raw, ok := m[field]
	if !ok || raw == nil {
		return "", entity.NewValidationError("%s is required", field)
	}
	s, ok := raw.(string)
	if !ok {
		return "", entity.NewValidationError("%s must be a string", field)
	}
	if s == "" {
		return "", entity.NewValidationError("%s must not be empty", field)
	}
	return s, nil
}

func optionalString(m map[string]any, field string) (*string, error) {
	raw, ok := m[field]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, entity.NewValidationError("%s must be a string", field)
	}
	return &s, nil
}

func optionalInt(m map[string]any, field string) (*int, error) {
	raw, ok := m[field]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case int:
		return &v, nil
	case int64:
		n := int(v)
		return &n, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, entity.NewValidationError("%s must be an integer", field)
		}
		n := int(v)
		return &n, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, entity.NewValidationError("%s must be an integer", field)
		}
		i := int(n)
		return &i, nil
	}
	return nil, entity.NewValidationError("%s must be an integer", field)
}

func optionalMapField(m map[string]any, field string) (map[string]any, error) {
	raw, ok := m[field]
	if !ok || raw == nil {
		return nil, nil
	}
	nested, ok := raw.(map[string]any)
	if !ok {
		return nil, entity.NewValidationError("%s must be an object", field)
	}
	return nested, nil
}

// requireAmount accepts a monetary amount as a decimal string or a JSON
// number and normalizes it to its string form.
func requireAmount(m map[string]any, field string) (string, error) {
	raw, ok := m[field]
	if !ok || raw == nil {
		return "", entity.NewValidationError("%s is required", field)
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", entity.NewValidationError("%s must not be empty", field)
		}
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	}
	return "", entity.NewValidationError("%s must be a decimal string or number", field)
}
