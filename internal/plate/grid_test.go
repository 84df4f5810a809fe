package plate

import (
	"errors"
	"testing"
)

func TestGridCenters(t *testing.T) {
	grid := Grid{Rows: 2, Cols: 3}

	centers, err := grid.Centers(100, 120)
	if err != nil {
		t.Fatalf("Centers failed: %v", err)
	}

	want := []WellCenter{
		{25, 20}, {25, 60}, {25, 100},
		{75, 20}, {75, 60}, {75, 100},
	}
	if len(centers) != len(want) {
		t.Fatalf("got %d centers, want %d", len(centers), len(want))
	}
	for i := range want {
		if centers[i] != want[i] {
			t.Errorf("center %d: got %+v, want %+v", i, centers[i], want[i])
		}
	}
}

func TestGridCenters_OddSpacing(t *testing.T) {
	// 7 // 2 = 3, so centers are floor(1.5)=1 and floor(4.5)=4
	centers, err := Grid{Rows: 2, Cols: 1}.Centers(7, 5)
	if err != nil {
		t.Fatalf("Centers failed: %v", err)
	}
	if centers[0].Row != 1 || centers[1].Row != 4 {
		t.Errorf("rows: got %d,%d, want 1,4", centers[0].Row, centers[1].Row)
	}
	if centers[0].Col != 2 {
		t.Errorf("col: got %d, want 2", centers[0].Col)
	}
}

func TestGridSpacing_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		grid          Grid
		height, width int
	}{
		{"zero rows", Grid{0, 12}, 100, 100},
		{"negative cols", Grid{8, -1}, 100, 100},
		{"image shorter than grid", Grid{8, 12}, 7, 100},
		{"image narrower than grid", Grid{8, 12}, 100, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.grid.Spacing(tt.height, tt.width)
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("got %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestGridWells_RowMajor(t *testing.T) {
	grid := Grid{Rows: 3, Cols: 4}
	wells, err := grid.Wells(300, 400)
	if err != nil {
		t.Fatalf("Wells failed: %v", err)
	}
	if len(wells) != grid.Count() {
		t.Fatalf("got %d wells, want %d", len(wells), grid.Count())
	}
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			w := wells[r*grid.Cols+c]
			if w.GridRow != r || w.GridCol != c {
				t.Errorf("index %d: got (%d,%d), want (%d,%d)", r*grid.Cols+c, w.GridRow, w.GridCol, r, c)
			}
		}
	}
}

func TestWellID(t *testing.T) {
	tests := []struct {
		row, col int
		want     string
	}{
		{0, 0, "A1"},
		{0, 11, "A12"},
		{7, 11, "H12"},
		{25, 0, "Z1"},
		{26, 0, "AA1"},
		{27, 4, "AB5"},
		{31, 47, "AF48"},
	}

	for _, tt := range tests {
		if got := WellID(tt.row, tt.col); got != tt.want {
			t.Errorf("WellID(%d,%d): got %s, want %s", tt.row, tt.col, got, tt.want)
		}
	}
}
