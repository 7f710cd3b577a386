package domain

import "testing"

func TestNewStockDefaults(t *testing.T) {
	s := NewStock("600000")
	if s.Code != "600000" {
		t.Errorf("Code = %q, want %q", s.Code, "600000")
	}
	if s.Title != "600000" {
		t.Errorf("Title = %q, want %q", s.Title, "600000")
	}
	if s.Price != 0 || s.Percent != 0 || s.Open != 0 || s.PrevClose != 0 || s.High != 0 || s.Low != 0 {
		t.Errorf("expected zero quote fields, got %+v", s)
	}
}

func TestStockApply(t *testing.T) {
	s := NewStock("0600000")
	s.Apply(Quote{Name: "PFBANK", Price: 7.5, Percent: 0.012, Open: 7.4, PrevClose: 7.41, High: 7.6, Low: 7.35})

	want := Stock{Title: "PFBANK", Code: "0600000", Price: 7.5, Percent: 0.012, Open: 7.4, PrevClose: 7.41, High: 7.6, Low: 7.35}
	if s != want {
		t.Errorf("Apply() = %+v, want %+v", s, want)
	}

	// An empty name falls back to the code.
	s.Apply(Quote{Price: 1})
	if s.Title != "0600000" {
		t.Errorf("Title after nameless quote = %q, want %q", s.Title, "0600000")
	}
	if s.Open != 0 {
		t.Errorf("Open = %v, want 0 (all fields overwritten)", s.Open)
	}
}

func TestCodes(t *testing.T) {
	got := Codes([]Stock{NewStock("a"), NewStock("b"), NewStock("a")})
	want := []string{"a", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("Codes() returned %d codes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Codes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
