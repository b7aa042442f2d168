// Package lexutil holds the value types shared by every lexicon package: open
// unions tagged with $type and blob references.
package lexutil

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Union is a value of an open union. Raw keeps the original JSON so that
// variants this client does not model survive a round trip.
type Union struct {
	Type string
	Raw  []byte
}

// UnmarshalJSON keeps the raw object and records its $type.
func (u *Union) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("union value must be a JSON object")
	}
	u.Type = gjson.GetBytes(data, `\$type`).String()
	u.Raw = append(u.Raw[:0], data...)
	return nil
}

// MarshalJSON returns the raw object.
func (u Union) MarshalJSON() ([]byte, error) {
	if len(u.Raw) == 0 {
		return []byte("null"), nil
	}
	return u.Raw, nil
}

// Is reports whether the union holds the variant typ.
func (u *Union) Is(typ string) bool {
	return u != nil && u.Type == typ
}

// Decode unmarshals the raw object into v.
func (u *Union) Decode(v any) error {
	if u == nil || len(u.Raw) == 0 {
		return errors.New("empty union")
	}
	return json.Unmarshal(u.Raw, v)
}

// NewUnion marshals v and tags it with typ.
func NewUnion(v any, typ string) (*Union, error) {
	raw, err := WithType(v, typ)
	if err != nil {
		return nil, err
	}
	return &Union{Type: typ, Raw: raw}, nil
}

// WithType marshals v and sets its $type field to typ.
func WithType(v any, typ string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("%s: only objects can carry a $type", typ)
	}
	return sjson.SetBytes(raw, `\$type`, typ)
}
