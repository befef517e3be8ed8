package metadata

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeFormat is the wire format used inside the __datetime__ envelope,
// matching the HTTP façade's documented timestamp encoding.
const TimeFormat = "2006-01-02T15:04:05.000000"

// datetimeEnvelope is the JSON shape {"__datetime__": {"__val__": ..., "__fmt__": ...}}.
type datetimeEnvelope struct {
	Datetime struct {
		Val string `json:"__val__"`
		Fmt string `json:"__fmt__"`
	} `json:"__datetime__"`
}

// MarshalJSON encodes a Value as a bare JSON scalar, except for
// KindTimestamp, which uses the __datetime__ envelope.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return json.Marshal(v.Int)
	case KindReal:
		return json.Marshal(v.Real)
	case KindText:
		return json.Marshal(v.Text)
	case KindTimestamp:
		env := datetimeEnvelope{}
		env.Datetime.Val = v.Timestamp.UTC().Format(TimeFormat)
		env.Datetime.Fmt = TimeFormat
		return json.Marshal(env)
	default:
		return nil, fmt.Errorf("metadata: cannot marshal value of kind %v", v.Kind)
	}
}

// UnmarshalJSON decodes a bare JSON scalar into a Value, recognizing the
// __datetime__ envelope and reviving it as KindTimestamp.
func (v *Value) UnmarshalJSON(data []byte) error {
	var env datetimeEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Datetime.Val != "" {
		format := env.Datetime.Fmt
		if format == "" {
			format = TimeFormat
		}
		t, err := time.Parse(format, env.Datetime.Val)
		if err != nil {
			return fmt.Errorf("metadata: parse __datetime__ value %q: %w", env.Datetime.Val, err)
		}
		*v = TimestampValue(t)
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch n := raw.(type) {
	case string:
		*v = TextValue(n)
	case float64:
		if n == float64(int64(n)) {
			*v = IntValue(int64(n))
		} else {
			*v = RealValue(n)
		}
	case nil:
		*v = Value{}
	default:
		return fmt.Errorf("metadata: unsupported JSON value type %T", raw)
	}
	return nil
}

// jsonRecord is the wire shape of a Record: the instrument plus a nested "fields" object.
type jsonRecord struct {
	Instrument string           `json:"instrument"`
	Fields     map[string]Value `json:"fields"`
}

// MarshalJSON encodes a Record as {"instrument": ..., "fields": {...}}.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonRecord{Instrument: r.Instrument, Fields: r.Fields})
}

// UnmarshalJSON decodes a Record from the {"instrument", "fields"} shape.
func (r *Record) UnmarshalJSON(data []byte) error {
	var jr jsonRecord
	if err := json.Unmarshal(data, &jr); err != nil {
		return err
	}
	r.Instrument = jr.Instrument
	r.Fields = jr.Fields
	return nil
}
