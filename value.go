package tabexport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a scalar field value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value. Non-finite numbers become text so they never
// reach a numeric cell.
func Number(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Text(strconv.FormatFloat(n, 'g', -1, 64))
	}
	return Value{kind: KindNumber, n: n}
}

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.kind == KindBool && v.b }

// Float returns the numeric payload; 0 for other kinds.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.n
}

// String returns the plain text form of v, as used in delimited output.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "Yes"
		}
		return "No"
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindText:
		return v.s
	default:
		return ""
	}
}

// ValueOf converts an arbitrary Go value into a Value. Integers, unsigned
// integers, floats and json.Number become numbers; time.Time becomes RFC 3339
// text; maps and slices become their JSON text. Nil and nil pointers are null.
func ValueOf(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case int8:
		return Number(float64(t))
	case int16:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Text(t.String())
		}
		return Number(f)
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case time.Time:
		return Text(t.Format(time.RFC3339Nano))
	case fmt.Stringer:
		return Text(t.String())
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return Null()
			}
		}
		if data, err := json.Marshal(x); err == nil {
			return Text(string(data))
		}
	}
	return Text(fmt.Sprint(x))
}

// Field is one keyed value within a Row.
type Field struct {
	Key   string
	Value Value
}

// Row is an ordered set of fields. Exports derive their column order from the
// first row.
type Row []Field

// NewRow builds a row from alternating keys and values. A trailing key
// without a value is null.
func NewRow(kv ...any) Row {
	row := make(Row, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		var val Value
		if i+1 < len(kv) {
			val = ValueOf(kv[i+1])
		}
		row = append(row, Field{Key: key, Value: val})
	}
	return row
}

// RowFromMap builds a row from m using keys for ordering. Keys missing from m
// are null.
func RowFromMap(keys []string, m map[string]any) Row {
	row := make(Row, len(keys))
	for i, k := range keys {
		row[i] = Field{Key: k, Value: ValueOf(m[k])}
	}
	return row
}

// Keys returns the row's keys in order.
func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value for key and whether it was present.
func (r Row) Get(key string) (Value, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Null(), false
}

// UnmarshalJSON decodes a JSON object into the row, keeping the object's key
// order.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: row must be a JSON object", ErrMalformedInput)
	}

	row := Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected token %v", ErrMalformedInput, tok)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		row = append(row, Field{Key: key, Value: ValueOf(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = row
	return nil
}
