package aggregate

import (
	"math"
	"sort"
)

// roundedPercent converts correct/total into a percentage with one decimal
// place, e.g. 17/20 -> 85.0.
func roundedPercent(correct, total int) float64 {
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

// meanBps is the arithmetic mean rounded to the nearest integer.
func meanBps(values []int) int {
	return int(math.Round(meanFloat(values)))
}

func meanFloat(values []int) float64 {
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

// medianBps is the standard median of the sorted list, averaging the two
// middle elements when the count is even, rounded to the nearest integer.
func medianBps(values []int) int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	mid := (float64(sorted[n/2-1]) + float64(sorted[n/2])) / 2
	return int(math.Round(mid))
}

// stdDevBps is the population standard deviation (divide by N, not N-1),
// rounded to the nearest integer.
func stdDevBps(values []int) int {
	mean := meanFloat(values)
	sumSq := 0.0
	for _, v := range values {
		diff := float64(v) - mean
		sumSq += diff * diff
	}
	return int(math.Round(math.Sqrt(sumSq / float64(len(values)))))
}
