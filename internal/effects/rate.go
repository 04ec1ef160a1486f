package effects

import (
	"fmt"
	"sort"

	"github.com/tanema/gween/ease"
)

// Rate maps linear progress in [0,1] to eased progress.
type Rate func(p float64) float64

func fromEase(fn ease.TweenFunc) Rate {
	return func(p float64) float64 {
		return float64(fn(float32(clamp01(p)), 0, 1, 1))
	}
}

var rates = map[string]Rate{
	"smooth":           Smooth,
	"linear":           fromEase(ease.Linear),
	"rush_into":        fromEase(ease.InQuad),
	"rush_from":        fromEase(ease.OutQuad),
	"ease_in_out_sine": fromEase(ease.InOutSine),
	"ease_out_cubic":   fromEase(ease.OutCubic),
	"bounce":           fromEase(ease.OutBounce),
	"elastic":          fromEase(ease.OutElastic),
	"there_and_back":   thereAndBack,
}

// Smooth is the default rate.
var Smooth = fromEase(ease.InOutCubic)

// thereAndBack rises to 1 at the midpoint and returns to 0.
func thereAndBack(p float64) float64 {
	p = clamp01(p)
	if p > 0.5 {
		p = 1 - p
	}
	return float64(ease.InOutCubic(float32(2*p), 0, 1, 1))
}

// RateByName resolves a rate name; the empty name is Smooth.
func RateByName(name string) (Rate, error) {
	if name == "" {
		return Smooth, nil
	}
	r, ok := rates[name]
	if !ok {
		return nil, fmt.Errorf("unknown rate %q (have %v)", name, RateNames())
	}
	return r, nil
}

// RateNames lists the known rate functions.
func RateNames() []string {
	names := make([]string, 0, len(rates))
	for n := range rates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
