package graph

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTime is the DateTime scalar, serialised as an RFC 3339 string.
type DateTime struct {
	time.Time
}

// ImplementsGraphQLType maps this Go type to the schema scalar.
func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

// UnmarshalGraphQL accepts RFC 3339 strings and unix milliseconds.
func (t *DateTime) UnmarshalGraphQL(input interface{}) error {
	switch v := input.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("invalid DateTime %q: %w", v, err)
		}
		t.Time = parsed
	case int32:
		t.Time = time.UnixMilli(int64(v)).UTC()
	case float64:
		t.Time = time.UnixMilli(int64(v)).UTC()
	case time.Time:
		t.Time = v
	default:
		return fmt.Errorf("wrong type for DateTime: %T", input)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}
