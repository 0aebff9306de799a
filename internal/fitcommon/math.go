package fitcommon

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-approx"
)

const ln10Over20 = math.Ln10 / 20

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float32) float32 {
	if db == 0 {
		return 1
	}
	return approx.FastExp(db * ln10Over20)
}

func ParseWorkers(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}

// ParseRates parses a comma-separated list of positive sample rates.
func ParseRates(raw string) ([]int, error) {
	var rates []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid sample rate %q", part)
		}
		rates = append(rates, n)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no sample rates in %q", raw)
	}
	return rates, nil
}
