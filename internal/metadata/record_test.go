package metadata

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecordEqualStructural(t *testing.T) {
	a := NewRecord("hirise", map[string]Value{
		"observation_id": TextValue("PSP_001"),
		"lines":          IntValue(5000),
		"center_latitude": RealValue(-12.5),
	})
	b := NewRecord("hirise", map[string]Value{
		"observation_id": TextValue("PSP_001"),
		"lines":          IntValue(5000),
		"center_latitude": RealValue(-12.5),
	})
	if !a.Equal(b) {
		t.Fatal("expected structurally identical records to be equal")
	}
	c := NewRecord("hirise", map[string]Value{
		"observation_id": TextValue("PSP_001"),
		"lines":          IntValue(5001),
		"center_latitude": RealValue(-12.5),
	})
	if a.Equal(c) {
		t.Fatal("expected records differing in one field to be unequal")
	}
}

func TestValueFloatCoercion(t *testing.T) {
	if f, ok := IntValue(7).Float(); !ok || f != 7 {
		t.Fatalf("IntValue.Float() = %v, %v", f, ok)
	}
	if f, ok := RealValue(2.5).Float(); !ok || f != 2.5 {
		t.Fatalf("RealValue.Float() = %v, %v", f, ok)
	}
	if _, ok := TextValue("x").Float(); ok {
		t.Fatal("TextValue.Float() should not succeed")
	}
}

func TestTimestampJSONEnvelope(t *testing.T) {
	ts := time.Date(2021, 3, 4, 12, 30, 0, 0, time.UTC)
	v := TimestampValue(ts)
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Kind != KindTimestamp {
		t.Fatalf("decoded kind = %v, want KindTimestamp", decoded.Kind)
	}
	if !decoded.Timestamp.Equal(ts) {
		t.Fatalf("decoded timestamp = %v, want %v", decoded.Timestamp, ts)
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	r := NewRecord("ctx", map[string]Value{
		"observation_id": TextValue("B01_1234_1"),
		"north_azimuth":  RealValue(273.4),
	})
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Record
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Equal(r) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, r)
	}
}
