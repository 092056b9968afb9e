package model

import "testing"

func TestRect_ShortString(t *testing.T) {
	r := Rect{Left: 0, Top: 0, Right: 100, Bottom: 50}
	if got := r.ShortString(); got != "[0,0][100,50]" {
		t.Errorf("ShortString = %q, want %q", got, "[0,0][100,50]")
	}
	neg := Rect{Left: -10, Top: 5, Right: 20, Bottom: 30}
	if got := neg.ShortString(); got != "[-10,5][20,30]" {
		t.Errorf("ShortString = %q, want %q", got, "[-10,5][20,30]")
	}
}

func TestParseRect_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  Rect
	}{
		{"[0,0][100,50]", Rect{0, 0, 100, 50}},
		{"[10,20][300,400]", Rect{10, 20, 300, 400}},
		{" [-5,0][5,10] ", Rect{-5, 0, 5, 10}},
		{"[1, 2][3, 4]", Rect{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		got, err := ParseRect(tt.input)
		if err != nil {
			t.Errorf("ParseRect(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRect(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestParseRect_Invalid(t *testing.T) {
	tests := []string{
		"",
		"0,0,100,50",
		"[0,0]",
		"[0,0][100]",
		"[a,b][c,d]",
		"[0,0][100,50][1,1]",
	}
	for _, s := range tests {
		if _, err := ParseRect(s); err == nil {
			t.Errorf("ParseRect(%q) should fail", s)
		}
	}
}

func TestParseRect_RoundTrip(t *testing.T) {
	r := Rect{Left: 42, Top: 7, Right: 1080, Bottom: 1920}
	got, err := ParseRect(r.ShortString())
	if err != nil {
		t.Fatal(err)
	}
	if got != r {
		t.Errorf("round trip = %+v, want %+v", got, r)
	}
}

func TestRect_Geometry(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 70}
	if r.Width() != 100 || r.Height() != 50 {
		t.Errorf("size = %dx%d, want 100x50", r.Width(), r.Height())
	}
	if x, y := r.Center(); x != 60 || y != 45 {
		t.Errorf("Center = (%d,%d), want (60,45)", x, y)
	}
	if !r.Contains(10, 20) || r.Contains(110, 70) {
		t.Error("Contains should include top-left and exclude bottom-right")
	}
	if r.Empty() {
		t.Error("non-degenerate rect reported empty")
	}
	if !(Rect{5, 5, 5, 10}).Empty() {
		t.Error("zero-width rect should be empty")
	}
}
