package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		// 16 cols (image view)
		{0, 16, 0, 0},
		{1, 16, 1, 0},
		{15, 16, 15, 0},
		{16, 16, 0, 1},
		{17, 16, 1, 1},
		{0xFD, 16, 13, 15},
		{255, 16, 15, 15},

		// 8 cols (narrow view)
		{0, 8, 0, 0},
		{7, 8, 7, 0},
		{8, 8, 0, 1},
		{255, 8, 7, 31},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}

func TestIndexInverse(t *testing.T) {
	for _, cols := range []int{8, 16} {
		for i := 0; i < 256; i++ {
			x, y := GetGridCoords(i, cols)
			if got := Index(x, y, cols); got != i {
				t.Errorf("Index(GetGridCoords(%d, %d)) = %d", i, cols, got)
			}
		}
	}
}
