package builtin

import (
	"math"
	"reflect"
	"testing"

	"salesetl/pkg/records"
)

func TestCoerceValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     any
		typ    string
		want   any
		wantOK bool
	}{
		{"int_from_string", "42", "int", int64(42), true},
		{"int_from_padded", " 7 ", "int", int64(7), true},
		{"int_truncates_float_string", "3.9", "int", int64(3), true},
		{"int_truncates_negative", -2.5, "int", int64(-2), true},
		{"int_from_int64", int64(5), "int", int64(5), true},
		{"int_rejects_text", "three", "int", nil, false},
		{"int_rejects_nan", math.NaN(), "int", nil, false},
		{"float_from_int", int64(3), "float", float64(3), true},
		{"float_from_string", "10.5", "float", 10.5, true},
		{"float_rejects_text", "ten", "float", nil, false},
		{"float_rejects_inf_string", "Inf", "float", nil, false},
		{"empty_string_is_null", "  ", "float", nil, true},
		{"string_from_int", int64(1001), "string", "1001", true},
		{"string_from_float", 2.5, "string", "2.5", true},
		{"string_from_whole_float", float64(12), "string", "12", true},
		{"unknown_type_passes", "x", "date", "x", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := CoerceValue(tt.in, tt.typ)
			if ok != tt.wantOK || !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("CoerceValue(%#v, %q) = (%#v, %v), want (%#v, %v)", tt.in, tt.typ, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCoerceNullPropagatesBadCells(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"q": "3", "p": "10"},
		{"q": "x", "p": "2"},
		{"q": nil, "p": "oops"},
	}
	failed := map[string]int{}
	out := Coerce{
		Types:  map[string]string{"q": "int", "p": "float"},
		OnFail: func(field string, _ any) { failed[field]++ },
	}.Apply(in)

	if len(out) != 3 {
		t.Fatalf("rows = %d, want 3 (bad cells must not drop rows)", len(out))
	}
	if out[0]["q"] != int64(3) || out[0]["p"] != float64(10) {
		t.Fatalf("row 0 = %#v", out[0])
	}
	if out[1]["q"] != nil || out[2]["p"] != nil {
		t.Fatalf("bad cells not nulled: %#v %#v", out[1], out[2])
	}
	if failed["q"] != 1 || failed["p"] != 1 {
		t.Fatalf("failures = %v, want q=1 p=1", failed)
	}
}

func TestDerive(t *testing.T) {
	t.Parallel()

	d := Derive{Quantity: "q", Price: "p", Discount: "d", Total: "total", Net: "net"}
	tests := []struct {
		name      string
		in        records.Record
		wantTotal any
		wantNet   any
	}{
		{"with_discount", records.Record{"q": int64(3), "p": 10.0, "d": 5.0}, 30.0, 25.0},
		{"negative_net", records.Record{"q": int64(1), "p": 2.0, "d": 10.0}, 2.0, -8.0},
		{"null_discount_is_zero", records.Record{"q": int64(2), "p": 4.5, "d": nil}, 9.0, 9.0},
		{"missing_discount_is_zero", records.Record{"q": int64(2), "p": 1.5}, 3.0, 3.0},
		{"null_quantity", records.Record{"q": nil, "p": 4.5, "d": 1.0}, nil, nil},
		{"null_price", records.Record{"q": int64(1), "p": nil}, nil, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := tt.in.Clone()
			d.Apply([]records.Record{rec})
			if rec["total"] != tt.wantTotal || rec["net"] != tt.wantNet {
				t.Fatalf("total=%v net=%v, want %v %v", rec["total"], rec["net"], tt.wantTotal, tt.wantNet)
			}
		})
	}
}

func TestFillNull(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"region": nil}, {"region": ""}, {}, {"region": "A"}}
	FillNull{Field: "region", Value: "UNKNOWN"}.Apply(in)
	for i, want := range []string{"UNKNOWN", "UNKNOWN", "UNKNOWN", "A"} {
		if in[i]["region"] != want {
			t.Fatalf("row %d region = %v, want %s", i, in[i]["region"], want)
		}
	}
}

func TestPositive(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"id": 1, "net": 25.0},
		{"id": 2, "net": -8.0},
		{"id": 3, "net": 0.0},
		{"id": 4, "net": nil},
		{"id": 5, "net": int64(1)},
		{"id": 6, "net": "12"},
	}
	var dropped []any
	out := Positive{Field: "net", OnDrop: func(r records.Record) { dropped = append(dropped, r["id"]) }}.Apply(in)

	var kept []any
	for _, r := range out {
		kept = append(kept, r["id"])
	}
	if !reflect.DeepEqual(kept, []any{1, 5}) {
		t.Fatalf("kept = %v, want [1 5]", kept)
	}
	if !reflect.DeepEqual(dropped, []any{2, 3, 4, 6}) {
		t.Fatalf("dropped = %v", dropped)
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"OrderId": "1"},
		{"OrderId": ""},
		{"OrderId": nil},
		{},
		{"OrderId": "5"},
	}
	var missing []string
	out := Require{
		Fields: []string{"OrderId"},
		OnDrop: func(_ records.Record, f string) { missing = append(missing, f) },
	}.Apply(in)
	if len(out) != 2 || out[0]["OrderId"] != "1" || out[1]["OrderId"] != "5" {
		t.Fatalf("out = %#v", out)
	}
	if len(missing) != 3 {
		t.Fatalf("dropped %d, want 3", len(missing))
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"a": " foo ", "b": "x\u00c2\u00a0y", "c": 3}}
	Normalize{}.Apply(in)
	want := records.Record{"a": "foo", "b": "x y", "c": 3}
	if !reflect.DeepEqual(in[0], want) {
		t.Fatalf("got %#v want %#v", in[0], want)
	}

	in = []records.Record{{"a": " foo ", "b": " bar "}}
	Normalize{Fields: []string{"a"}}.Apply(in)
	if in[0]["a"] != "foo" || in[0]["b"] != " bar " {
		t.Fatalf("field-scoped normalize touched other fields: %#v", in[0])
	}
}
