package wire

import (
	"time"

	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"
)

// Decoder is the JSON decoder facade. It is a thin adapter over
// jsonparser: every Assign* method reads directly from the caller-owned
// byte slice with no intermediate map[string]interface{}, keeping decoding
// zero-copy over the parser-owned buffer. Decoder itself holds no state —
// unlike a scratch-buffer scanner, there is nothing to reuse across calls —
// so the zero value is ready to use and a single package-level instance is
// safe for concurrent use.
type Decoder struct{}

// D is the package's stateless decoder instance.
var D = Decoder{}

// AssignString copies the string at key into dst. A missing key leaves dst
// untouched and returns false — this is a signal for the caller, never an
// error.
func (Decoder) AssignString(buf []byte, key string, dst *string) bool {
	v, err := jsonparser.GetString(buf, key)
	if err != nil {
		return false
	}
	*dst = v
	return true
}

// AssignBool copies the bool at key into dst.
func (Decoder) AssignBool(buf []byte, key string, dst *bool) bool {
	v, err := jsonparser.GetBoolean(buf, key)
	if err != nil {
		return false
	}
	*dst = v
	return true
}

// AssignInt64 copies the integer at key into dst, accepting either a JSON
// number or a JSON string representation of one.
func (Decoder) AssignInt64(buf []byte, key string, dst *int64) bool {
	val, dtype, _, err := jsonparser.Get(buf, key)
	if err != nil {
		return false
	}
	switch dtype {
	case jsonparser.Number:
		n, err := jsonparser.ParseInt(val)
		if err != nil {
			return false
		}
		*dst = n
	case jsonparser.String:
		s, err := jsonparser.ParseString(val)
		if err != nil {
			return false
		}
		n, err := decimal.NewFromString(s)
		if err != nil {
			return false
		}
		*dst = n.IntPart()
	default:
		return false
	}
	return true
}

// AssignFloat coerces the value at key — JSON number or JSON string — to a
// float64 via shopspring/decimal, which parses exchange-formatted decimal
// strings (e.g. "0.00010000") without the intermediate-representation
// surprises strconv.ParseFloat can produce on long decimal strings. Price
// fields arrive as strings on this API and must be coerced.
func (Decoder) AssignFloat(buf []byte, key string, dst *float64) bool {
	val, dtype, _, err := jsonparser.Get(buf, key)
	if err != nil {
		return false
	}
	var s string
	switch dtype {
	case jsonparser.Number:
		s = string(val)
	case jsonparser.String:
		s, err = jsonparser.ParseString(val)
		if err != nil {
			return false
		}
	default:
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	f, _ := d.Float64()
	*dst = f
	return true
}

// AssignTimeMillis reads a signed 64-bit millisecond timestamp at key.
func (Decoder) AssignTimeMillis(buf []byte, key string, dst *time.Time) bool {
	var ms int64
	if !D.AssignInt64(buf, key, &ms) {
		return false
	}
	*dst = time.UnixMilli(ms)
	return true
}

// AssignTimeNanos reads a signed 64-bit nanosecond timestamp at key — used
// by the handful of fields that override the default millisecond unit.
func (Decoder) AssignTimeNanos(buf []byte, key string, dst *time.Time) bool {
	var ns int64
	if !D.AssignInt64(buf, key, &ns) {
		return false
	}
	*dst = time.Unix(0, ns)
	return true
}

// EachArrayElement walks a JSON array at key, invoking fn with each
// element's raw bytes and index. Used for tuple-shaped payloads such as
// kline rows and (price, qty) order-book pairs.
func (Decoder) EachArrayElement(buf []byte, key string, fn func(i int, element []byte)) error {
	i := 0
	_, err := jsonparser.ArrayEach(buf, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		fn(i, value)
		i++
	}, toKeyPath(key)...)
	return err
}

// EachTopLevelArrayElement walks a top-level JSON array (no key), for
// payloads whose root value is an array rather than an object.
func (Decoder) EachTopLevelArrayElement(buf []byte, fn func(i int, element []byte)) error {
	i := 0
	_, err := jsonparser.ArrayEach(buf, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		fn(i, value)
		i++
	})
	return err
}

// ArrayElementString returns the string at the given positional index of a
// JSON array (used for tuple-shaped rows, e.g. kline fields or (price,qty)
// pairs, where elements are addressed by position rather than name).
func (Decoder) ArrayElementString(element []byte, idx int) (string, bool) {
	var out string
	var i int
	_, err := jsonparser.ArrayEach(element, func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if i == idx {
			switch dataType {
			case jsonparser.String:
				if s, perr := jsonparser.ParseString(value); perr == nil {
					out = s
				}
			default:
				out = string(value)
			}
		}
		i++
	})
	if err != nil || i <= idx {
		return "", false
	}
	return out, true
}

// ArrayElementFloat returns the float64 at the given positional index of a
// JSON array element, coercing through shopspring/decimal like AssignFloat.
func (Decoder) ArrayElementFloat(element []byte, idx int) (float64, bool) {
	s, ok := D.ArrayElementString(element, idx)
	if !ok {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

func toKeyPath(key string) []string {
	if key == "" {
		return nil
	}
	return []string{key}
}

// RawObject returns the raw bytes of the object or array nested at key,
// without copying or parsing its contents — used to narrow a decoder to a
// nested payload (e.g. user-data-stream events that wrap their fields
// under "o" or "a", or a combined-stream envelope's "data" field) before
// running further Assign* calls against it. found is false if key is
// absent or not an object/array.
func RawObject(buf []byte, key string) (raw []byte, found bool, err error) {
	val, dtype, _, err := jsonparser.Get(buf, key)
	if err != nil {
		return nil, false, err
	}
	if dtype != jsonparser.Object && dtype != jsonparser.Array {
		return nil, false, nil
	}
	return val, true, nil
}

// Code extracts the optional "code" field from a response body. Absence or
// zero means success.
func (Decoder) Code(buf []byte) (code int64, present bool) {
	var c int64
	if !D.AssignInt64(buf, "code", &c) {
		return 0, false
	}
	return c, true
}

// Message extracts the optional "msg" field from an error response body.
func (Decoder) Message(buf []byte) string {
	var m string
	D.AssignString(buf, "msg", &m)
	return m
}
