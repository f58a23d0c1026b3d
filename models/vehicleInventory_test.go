package models

import "testing"

func TestDecodeInventario(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
		want map[string]float64
	}{
		{"nil", nil, map[string]float64{}},
		{"empty", []byte(""), map[string]float64{}},
		{"malformed", []byte("{{{"), map[string]float64{}},
		{"mapping", []byte(`{"p1":5,"p2":0}`), map[string]float64{"p1": 5, "p2": 0}},
		{"non-numeric stock reads as zero", []byte(`{"p1":"cinco","p2":3}`), map[string]float64{"p1": 0, "p2": 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeInventario(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("got[%s] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestEncodeInventarioRoundTrip(t *testing.T) {
	in := map[string]float64{"p1": 5, "p2": 0.5}
	out := DecodeInventario(EncodeInventario(in))
	if len(out) != 2 || out["p1"] != 5 || out["p2"] != 0.5 {
		t.Fatalf("round trip = %v", out)
	}
	if got := EncodeInventario(nil); string(got) != "{}" {
		t.Fatalf("EncodeInventario(nil) = %s, want {}", got)
	}
}
