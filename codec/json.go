package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONKind tags the six cases of the library-independent JSON value ADT
// (spec §6: "JSON is library-independent via an intermediate JsonValue ADT
// with six cases").
type JSONKind int

const (
	JSONNull JSONKind = iota
	JSONBool
	JSONNumber
	JSONString
	JSONArray
	JSONObject
)

// JSONValue is the intermediate representation every type's JSON codec
// targets. It is never round-tripped through encoding/json's native
// struct tags — only used at the outermost (de)serialization boundary.
type JSONValue struct {
	Kind JSONKind
	Bool bool
	Num  json.Number
	Str  string
	Arr  []JSONValue
	// Obj preserves insertion order, unlike a map, so object encoding is
	// deterministic without an extra sort pass.
	Obj []JSONField
}

type JSONField struct {
	Key   string
	Value JSONValue
}

func JNull() JSONValue                 { return JSONValue{Kind: JSONNull} }
func JBool(b bool) JSONValue           { return JSONValue{Kind: JSONBool, Bool: b} }
func JString(s string) JSONValue       { return JSONValue{Kind: JSONString, Str: s} }
func JNumber(n json.Number) JSONValue  { return JSONValue{Kind: JSONNumber, Num: n} }
func JInt(n int64) JSONValue           { return JNumber(json.Number(fmt.Sprintf("%d", n))) }
func JArray(items []JSONValue) JSONValue {
	return JSONValue{Kind: JSONArray, Arr: items}
}
func JObject(fields ...JSONField) JSONValue {
	return JSONValue{Kind: JSONObject, Obj: fields}
}

// Field is a convenience constructor for JSONField.
func Field(key string, v JSONValue) JSONField { return JSONField{Key: key, Value: v} }

// Get returns the value of the named field and whether it was present.
func (v JSONValue) Get(key string) (JSONValue, bool) {
	for _, f := range v.Obj {
		if f.Key == key {
			return f.Value, true
		}
	}
	return JSONValue{}, false
}

// MarshalJSON renders the ADT to standard encoding/json bytes.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v JSONValue) error {
	switch v.Kind {
	case JSONNull:
		buf.WriteString("null")
	case JSONBool:
		if v.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case JSONNumber:
		buf.WriteString(string(v.Num))
	case JSONString:
		b, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case JSONArray:
		buf.WriteByte('[')
		for i, item := range v.Arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case JSONObject:
		buf.WriteByte('{')
		for i, f := range v.Obj {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("codec: unknown JSONKind %d", v.Kind)
	}
	return nil
}

// ParseJSON parses standard JSON bytes into the ADT, preserving object key
// order via json.Decoder's token stream.
func ParseJSON(data []byte) (JSONValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return JSONValue{}, &DecodeError{Msg: "json: " + err.Error()}
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (JSONValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return JSONValue{}, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (JSONValue, error) {
	switch t := tok.(type) {
	case nil:
		return JNull(), nil
	case bool:
		return JBool(t), nil
	case json.Number:
		return JNumber(t), nil
	case string:
		return JString(t), nil
	case json.Delim:
		switch t {
		case '[':
			var arr []JSONValue
			for dec.More() {
				v, err := parseValue(dec)
				if err != nil {
					return JSONValue{}, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return JSONValue{}, err
			}
			return JArray(arr), nil
		case '{':
			var fields []JSONField
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return JSONValue{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return JSONValue{}, fmt.Errorf("object key is not a string")
				}
				val, err := parseValue(dec)
				if err != nil {
					return JSONValue{}, err
				}
				fields = append(fields, Field(key, val))
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return JSONValue{}, err
			}
			return JObject(fields...), nil
		}
	}
	return JSONValue{}, fmt.Errorf("unexpected token %v", tok)
}

// JSONCodec bridges a type to the JSONValue ADT.
type JSONCodec[T any] interface {
	ToJSON(v T) JSONValue
	FromJSON(v JSONValue) (T, error)
}

// WrapSum renders a sum-type variant as {"VariantName": {...fields...}},
// the "wrapped-by-type-key" JSON derivation for sum types (spec §6).
func WrapSum(variant string, payload JSONValue) JSONValue {
	return JObject(Field(variant, payload))
}

// UnwrapSum extracts the single variant name and payload from a value
// written by WrapSum.
func UnwrapSum(v JSONValue) (variant string, payload JSONValue, err error) {
	if v.Kind != JSONObject || len(v.Obj) != 1 {
		return "", JSONValue{}, NewDecodeError("sum: expected single-key object, got %v", v.Kind)
	}
	return v.Obj[0].Key, v.Obj[0].Value, nil
}
