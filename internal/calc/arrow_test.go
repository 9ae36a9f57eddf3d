package calc

import "testing"

func TestArrow(t *testing.T) {
	tests := []struct {
		name string
		prev Count
		cur  Count
		want ArrowType
	}{
		{"increase same total", NewCount(1, 4), NewCount(2, 4), ArrowIncrease},
		{"decrease same total", NewCount(3, 4), NewCount(2, 4), ArrowDecrease},
		{"unchanged same total", NewCount(2, 4), NewCount(2, 4), ArrowNone},
		{"equal ratio different totals", NewCount(1, 2), NewCount(3, 6), ArrowNone},
		{"increase different totals", NewCount(1, 3), NewCount(2, 5), ArrowIncrease},
		{"decrease different totals", NewCount(2, 3), NewCount(3, 5), ArrowDecrease},
		{"old total zero", NewCount(0, 0), NewCount(3, 5), ArrowNone},
		{"new total zero", NewCount(1, 2), NewCount(0, 0), ArrowNone},
		// 1/3 vs 333333/1000000 differs by 1/3000000, lost by naive float rounding at low precision
		{"tiny increase", NewCount(333333, 1000000), NewCount(1, 3), ArrowIncrease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Arrow(tt.prev, tt.cur); got != tt.want {
				t.Errorf("Arrow(%v, %v) = %q, want %q", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestDelta(t *testing.T) {
	num, den, ok := Delta(NewCount(1, 4), NewCount(1, 6))
	if !ok {
		t.Fatal("Delta should be defined for non-zero totals")
	}
	// 1/6 - 1/4 = -1/12
	if num != -1 || den != 12 {
		t.Errorf("Delta = %d/%d, want -1/12", num, den)
	}

	if _, _, ok := Delta(NewCount(0, 0), NewCount(1, 1)); ok {
		t.Error("Delta with zero old total should be undefined")
	}
}

func TestGCD(t *testing.T) {
	tests := []struct{ a, b, want int64 }{
		{12, 18, 6},
		{7, 13, 1},
		{0, 5, 5},
		{5, 0, 5},
		{-4, 6, 2},
	}
	for _, tt := range tests {
		if got := GCD(tt.a, tt.b); got != tt.want {
			t.Errorf("GCD(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
