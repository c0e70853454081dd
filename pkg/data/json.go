package data

import (
	"strconv"
	"strings"

	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/json"
	"github.com/isis-group/isis-sub000/pkg/types"
)

// valueJSON is the wire form of a Value:
//
//	{"type":"u8bit","value":5}
//	{"type":"selection","value":"b","entries":["a","b"]}
type valueJSON struct {
	Type    string      `json:"type"`
	Value   interface{} `json:"value"`
	Entries []string    `json:"entries,omitempty"`
}

// arrayJSON is the wire form of an Array.
type arrayJSON struct {
	Type    string        `json:"type"`
	Values  []interface{} `json:"values"`
	Entries []string      `json:"entries,omitempty"`
}

func (s *Scalar[T]) MarshalJSON() ([]byte, error) {
	out := valueJSON{Type: s.TypeName(), Value: jsonPayload(s.v)}
	if sel, ok := any(s.v).(types.Selection); ok {
		out.Entries = sel.Entries()
	}
	return json.Marshal(out)
}

func (a *TypedArray[T]) MarshalJSON() ([]byte, error) {
	out := arrayJSON{Type: a.TypeName(), Values: make([]interface{}, len(a.data))}
	for i, v := range a.data {
		out.Values[i] = jsonPayload(v)
	}
	if sels, ok := any(a.data).([]types.Selection); ok && len(sels) > 0 {
		out.Entries = sels[0].Entries()
	}
	return json.Marshal(out)
}

// jsonFloat keeps finite floats as numbers; NaN and infinities become the
// strings the parser reads back.
func jsonFloat[F floatType](f F) interface{} {
	if excluded(float64(f)) {
		return formatPayload(f)
	}
	return f
}

func jsonFloats[F floatType](s []F) []interface{} {
	out := make([]interface{}, len(s))
	for i, f := range s {
		out[i] = jsonFloat(f)
	}
	return out
}

func jsonPayload[T types.Payload](v T) interface{} {
	switch x := any(v).(type) {
	case float32:
		return jsonFloat(x)
	case float64:
		return jsonFloat(x)
	case complex64:
		return []interface{}{jsonFloat(real(x)), jsonFloat(imag(x))}
	case complex128:
		return []interface{}{jsonFloat(real(x)), jsonFloat(imag(x))}
	case types.Color24:
		return []int{int(x.R), int(x.G), int(x.B)}
	case types.Color48:
		return []int{int(x.R), int(x.G), int(x.B)}
	case types.FVector3:
		return jsonFloats(x[:])
	case types.DVector3:
		return jsonFloats(x[:])
	case types.FVector4:
		return jsonFloats(x[:])
	case types.DVector4:
		return jsonFloats(x[:])
	case types.DList:
		return jsonFloats(x)
	case types.IList:
		if x == nil {
			return []int32{}
		}
		return x
	case types.SList:
		if x == nil {
			return []string{}
		}
		return x
	case types.Selection:
		return x.String()
	case types.Date:
		return x.Time().Format("2006-01-02")
	case types.Timestamp:
		return x.Time().Format("20060102T150405.000")
	case types.Duration:
		return int64(x)
	}
	return v
}

// ValueFromJSON decodes the wire form written by MarshalJSON. Malformed
// documents and unknown kinds are errors; payloads that do not fit the kind
// are logged and clamped like any other conversion.
func ValueFromJSON(data []byte) (Value, error) {
	var in valueJSON
	if err := json.UnmarshalNumbers(data, &in); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "malformed value document")
	}
	id, ok := types.ByName(in.Type)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown value type %q", in.Type)
	}
	return decodeElement(id, in.Value, in.Entries)
}

// ArrayFromJSON decodes the wire form of an array.
func ArrayFromJSON(data []byte) (Array, error) {
	var in arrayJSON
	if err := json.UnmarshalNumbers(data, &in); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "malformed array document")
	}
	id, ok := types.ByName(in.Type)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown array type %q", in.Type)
	}
	out := CreateByID(id, len(in.Values))
	for i, raw := range in.Values {
		v, err := decodeElement(id, raw, in.Entries)
		if err != nil {
			out.Release()
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "element "+strconv.Itoa(i))
		}
		out.SetAt(i, v)
	}
	return out, nil
}

func decodeElement(id types.ID, raw interface{}, entries []string) (Value, error) {
	switch id {
	case types.SelectionID:
		sel := types.NewSelection(strings.Join(entries, ","))
		if name := jsonText(raw); name != "" && name != types.NotSet && !sel.Set(name) {
			return nil, errors.Newf(errors.ErrorTypeValidation, "%q is not one of %v", name, entries)
		}
		return NewValue(sel), nil
	case types.SListID:
		items, _ := raw.([]interface{})
		list := make(types.SList, len(items))
		for i, it := range items {
			list[i] = jsonText(it)
		}
		return NewValue(list), nil
	}
	return ParseValue(id, jsonText(raw)), nil
}

// jsonText renders a decoded JSON value as the text the string converters
// read.
func jsonText(raw interface{}) string {
	switch x := raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, it := range x {
			parts[i] = jsonText(it)
		}
		return "(" + strings.Join(parts, ",") + ")"
	}
	return ""
}
