package manager

import "fmt"

// Type selects the upstream endpoint family and payload shape.
type Type string

const (
	TypeCategory Type = "category"
	TypeUnit     Type = "unit"
)

// ParseType validates a type coming from a request.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeCategory, TypeUnit:
		return Type(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
	}
}

// Record is a category or unit of measure as listed by the host.
type Record struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ItemCount *int   `json:"item_count,omitempty"`
	Unit      string `json:"unit,omitempty"`
}
