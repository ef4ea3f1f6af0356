package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind discriminates the shapes an upstream inference body can take.
type Kind int

const (
	KindScalar Kind = iota // string, number, bool, null, or non-JSON text
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "scalar"
	}
}

// Payload is a parsed upstream body. Exactly one of List, Object, Scalar is
// meaningful, selected by Kind.
type Payload struct {
	Kind   Kind
	List   []any
	Object map[string]any
	Scalar any
}

// ParsePayload decodes body as a single JSON value. Bodies that are not
// valid JSON become a scalar holding the raw text.
func ParsePayload(body []byte) Payload {
	v, err := decodeValue(body)
	if err != nil {
		return Payload{Kind: KindScalar, Scalar: string(body)}
	}
	return Classify(v)
}

// decodeValue decodes exactly one JSON value, keeping numbers as written.
func decodeValue(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// Classify wraps an already-decoded JSON value.
func Classify(v any) Payload {
	switch val := v.(type) {
	case []any:
		return Payload{Kind: KindList, List: val}
	case map[string]any:
		return Payload{Kind: KindObject, Object: val}
	default:
		return Payload{Kind: KindScalar, Scalar: val}
	}
}

// Value returns the underlying decoded value.
func (p Payload) Value() any {
	switch p.Kind {
	case KindList:
		return p.List
	case KindObject:
		return p.Object
	default:
		return p.Scalar
	}
}

// PayloadError is returned by Normalize when the upstream body carries an
// explicit "error" field.
type PayloadError struct {
	Value any
}

func (e *PayloadError) Error() string {
	return "upstream error: " + stringify(e.Value)
}

// Normalize reduces a payload to one output string. Rules are checked in
// order and the first match wins:
//
//  1. non-empty list: first element's "generated_text", else its "output",
//     else the element itself
//  2. object with "generated_text"
//  3. object with "output"
//  4. object with "error": *PayloadError
//  5. any other object, stringified
//  6. anything else, stringified
func Normalize(p Payload) (string, error) {
	if p.Kind == KindList && len(p.List) > 0 {
		first := p.List[0]
		if obj, ok := first.(map[string]any); ok {
			if v, ok := obj["generated_text"]; ok {
				return stringify(v), nil
			}
			if v, ok := obj["output"]; ok {
				return stringify(v), nil
			}
		}
		return stringify(first), nil
	}

	if p.Kind == KindObject {
		if v, ok := p.Object["generated_text"]; ok {
			return stringify(v), nil
		}
		if v, ok := p.Object["output"]; ok {
			return stringify(v), nil
		}
		if v, ok := p.Object["error"]; ok {
			return "", &PayloadError{Value: v}
		}
		return stringify(p.Object), nil
	}

	return stringify(p.Value()), nil
}

// stringify renders strings verbatim and everything else as compact JSON.
func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
