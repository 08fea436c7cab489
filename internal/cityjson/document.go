// Package cityjson holds the parsed form of a CityJSON file and the
// helpers that inspect its top-level members.
package cityjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// TypeName is the required value of the top-level "type" member.
const TypeName = "CityJSON"

// Document is a parsed CityJSON file.
//
// Numbers are decoded as json.Number so the literal text of every value
// survives parsing. A Document must not be modified after Parse returns.
type Document struct {
	root map[string]any
}

// Parse decodes data into a Document. The top-level value must be an object.
func Parse(data []byte) (*Document, error) {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is %s, want object", ErrParse, kindOf(v))
	}
	return &Document{root: obj}, nil
}

// FromValue wraps an already decoded JSON object.
func FromValue(obj map[string]any) *Document {
	return &Document{root: obj}
}

// Value returns the decoded root object, for handing to a schema engine.
func (d *Document) Value() any {
	return d.root
}

// Field returns the top-level member name.
func (d *Document) Field(name string) (any, bool) {
	v, ok := d.root[name]
	return v, ok
}

// Type returns the "type" member, or "" when it is absent or not a string.
func (d *Document) Type() string {
	s, _ := d.root["type"].(string)
	return s
}

// IsCityJSON reports whether the document declares itself as CityJSON.
func IsCityJSON(d *Document) bool {
	return d.Type() == TypeName
}

// CheckType returns ErrNotCityJSON unless d is tagged "type": "CityJSON".
func CheckType(d *Document) error {
	if IsCityJSON(d) {
		return nil
	}
	v, ok := d.Field("type")
	if !ok {
		return fmt.Errorf("%w: missing \"type\"", ErrNotCityJSON)
	}
	b, _ := json.Marshal(v)
	return fmt.Errorf("%w: \"type\" is %s", ErrNotCityJSON, b)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
