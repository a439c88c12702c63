package aggregate

import "testing"

func TestVarianceStats(t *testing.T) {
	tests := []struct {
		name                       string
		values                     []int
		wantMean, wantMedian, wantStdDev int
	}{
		{"spec scenario", []int{10, 20, 30, 40}, 25, 25, 11},
		{"single value", []int{7}, 7, 7, 0},
		{"odd count median", []int{5, 1, 9}, 5, 5, 3},
		{"uniform", []int{10, 10, 10, 10}, 10, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meanBps(tt.values); got != tt.wantMean {
				t.Errorf("meanBps() = %d, want %d", got, tt.wantMean)
			}
			if got := medianBps(tt.values); got != tt.wantMedian {
				t.Errorf("medianBps() = %d, want %d", got, tt.wantMedian)
			}
			if got := stdDevBps(tt.values); got != tt.wantStdDev {
				t.Errorf("stdDevBps() = %d, want %d", got, tt.wantStdDev)
			}
		})
	}
}

func TestRoundedPercent(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{17, 20, 85.0},
		{20, 20, 100.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{0, 20, 0.0},
	}

	for _, tt := range tests {
		if got := roundedPercent(tt.correct, tt.total); got != tt.want {
			t.Errorf("roundedPercent(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}
