package value

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/wippyai/hostbridge/errors"
)

// Marshal encodes v as JSON. Object keys keep insertion order, Undefined
// object members are skipped, and Undefined elsewhere encodes as null.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the JSON text of v, or the error text if encoding fails.
func String(v Value) string {
	b, err := Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func encode(buf *bytes.Buffer, v Value) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.Kind() {
	case KindUndefined, KindNull:
		buf.WriteString("null")
	case KindBoolean:
		b, _ := v.Bool()
		buf.WriteString(strconv.FormatBool(b))
	case KindNumber:
		f, _ := v.Number()
		writeNumber(buf, f)
	case KindString:
		s, _ := v.Str()
		if err := writeString(buf, s); err != nil {
			return errors.Wrap(errors.PhaseEnvelope, errors.KindInvalidInput, err, "encode string")
		}
	case KindObject:
		keys, _ := v.Keys()
		buf.WriteByte('{')
		first := true
		for _, k := range keys {
			f := v.Field(k)
			if f.Kind() == KindUndefined {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeString(buf, k); err != nil {
				return errors.Wrap(errors.PhaseEnvelope, errors.KindInvalidInput, err, "encode key")
			}
			buf.WriteByte(':')
			if err := encode(buf, f); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, v.Index(i)); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	return nil
}

// writeString quotes s without HTML escaping so <, > and & stay literal.
func writeString(buf *bytes.Buffer, s string) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(b.Bytes(), []byte{'\n'}))
	return nil
}

func writeNumber(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		buf.WriteString("null")
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	default:
		buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
}

// Parse decodes JSON text into an owned Value tree. Object members keep
// their textual order.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decode(dec)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEnvelope, errors.KindInvalidInput, err, "parse JSON")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.InvalidInput(errors.PhaseEnvelope, "trailing data after JSON value")
	}
	return v, nil
}

func decode(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			o := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := kt.(string)
				ev, err := decode(dec)
				if err != nil {
					return nil, err
				}
				_ = o.Put(key, ev)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return o, nil
		case '[':
			a := NewArray()
			for dec.More() {
				ev, err := decode(dec)
				if err != nil {
					return nil, err
				}
				_ = a.Append(ev)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return a, nil
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return FromFloat(f), nil
	}
	return FromAny(tok)
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) { return Marshal(o) }

// MarshalJSON implements json.Marshaler.
func (a *Array) MarshalJSON() ([]byte, error) { return Marshal(a) }
