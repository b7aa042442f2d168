package xrpc

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is one query parameter.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered list of query parameters. Names may repeat: a list
// parameter is sent as one entry per element, in input order.
type Params []Param

// Add appends name=value.
func (p Params) Add(name, value string) Params {
	return append(p, Param{Name: name, Value: value})
}

// AddOptional appends name=value unless value is empty.
func (p Params) AddOptional(name, value string) Params {
	if value == "" {
		return p
	}
	return p.Add(name, value)
}

// AddBool appends name=true or name=false.
func (p Params) AddBool(name string, value bool) Params {
	return p.Add(name, strconv.FormatBool(value))
}

// AddLimit appends the limit clamped into [min, max]. A nil limit is omitted so
// the server applies its own default.
func (p Params) AddLimit(name string, limit *int64, min, max int64) Params {
	if limit == nil {
		return p
	}
	return p.Add(name, strconv.FormatInt(ClampLimit(*limit, min, max), 10))
}

// AddList appends one entry per value, keeping at most max values. Extra values
// are dropped silently. A max of zero or less keeps every value.
func (p Params) AddList(name string, values []string, max int) Params {
	for _, v := range Truncate(values, max) {
		p = p.Add(name, v)
	}
	return p
}

// Values returns every value recorded for name, in order.
func (p Params) Values(name string) []string {
	var out []string
	for _, param := range p {
		if param.Name == name {
			out = append(out, param.Value)
		}
	}
	return out
}

// colons and at-signs are legal in a query and appear in every DID and handle.
var queryUnescaper = strings.NewReplacer("%3A", ":", "%40", "@")

// Encode renders the parameters as a query string, preserving order.
func (p Params) Encode() string {
	var b strings.Builder
	for i, param := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeQuery(param.Name))
		b.WriteByte('=')
		b.WriteString(escapeQuery(param.Value))
	}
	return b.String()
}

func escapeQuery(s string) string {
	return queryUnescaper.Replace(url.QueryEscape(s))
}

// ClampLimit bounds v to the inclusive range [min, max].
func ClampLimit(v, min, max int64) int64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Truncate returns the first max items. A max of zero or less returns items unchanged.
func Truncate[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}

// Limit returns a pointer to n for optional limit arguments.
func Limit(n int64) *int64 {
	return &n
}
