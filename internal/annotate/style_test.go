package annotate

import "testing"

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		hex     string
		wantR   uint8
		wantG   uint8
		wantB   uint8
		wantA   uint8
		wantErr bool
	}{
		{"#FF0000", 255, 0, 0, 255, false},
		{"#00FF00", 0, 255, 0, 255, false},
		{"#0000FF", 0, 0, 255, 255, false},
		{"#FFFFFF", 255, 255, 255, 255, false},
		{"FF0000", 255, 0, 0, 255, false},    // without #
		{"#FF000080", 255, 0, 0, 128, false}, // with alpha
		{"", 0, 0, 0, 0, true},
		{"#FFF", 0, 0, 0, 0, true},
		{"#GGGGGG", 0, 0, 0, 0, true},
		{"#FF0000ZZ", 0, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			c, err := ParseHexColor(tt.hex)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.R != tt.wantR || c.G != tt.wantG || c.B != tt.wantB || c.A != tt.wantA {
				t.Errorf("got (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					c.R, c.G, c.B, c.A, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestStyleResolve_Colormap(t *testing.T) {
	s := DefaultStyle()
	s.LowColor = "#000000"
	s.HighColor = "#FF0000"
	s.LineWidth = 0

	rs, err := s.resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if c := rs.colormap[0]; c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("low end: got %v, want black", c)
	}
	if c := rs.colormap[255]; c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("high end: got %v, want red", c)
	}
	if rs.width != 1 {
		t.Errorf("line width: got %d, want 1", rs.width)
	}
	if rs.labelBG != nil {
		t.Error("label background should be unset")
	}
}

func TestStyleResolve_DefaultsEmptyRamp(t *testing.T) {
	s := DefaultStyle()
	s.LowColor, s.HighColor = "", ""

	rs, err := s.resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if c := rs.colormap[255]; c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("high end: got %v, want white", c)
	}
}
