package tui

import (
	"testing"

	"github.com/boilerex/bx/internal/browse"
)

func TestPricePresetsFollowCeiling(t *testing.T) {
	presets := pricePresets(500)

	if presets[0].label != "any" || presets[0].max != browse.OpenMax {
		t.Errorf("first preset = %+v, want the open window", presets[0])
	}
	top := presets[len(presets)-1]
	if top.min != 500 || top.max != browse.OpenMax || top.label != "$500+" {
		t.Errorf("top preset = %+v, want open-ended above the ceiling", top)
	}
	for _, p := range presets[1 : len(presets)-1] {
		if p.max > 500 {
			t.Errorf("preset %+v exceeds the ceiling", p)
		}
	}
}

func TestPricePresetsDefaultCeiling(t *testing.T) {
	presets := pricePresets(0)
	top := presets[len(presets)-1]
	if top.min != 1000 || top.label != "$1,000+" {
		t.Errorf("top preset = %+v, want $1,000+", top)
	}
}
