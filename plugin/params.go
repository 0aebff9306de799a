package plugin

import (
	"fmt"

	"github.com/cwbudde/algo-chaososc/chaososc"
)

var parameterNames = [chaososc.NumParams]string{
	chaososc.LenRatio: "L1 <=> L2",
	chaososc.Scale:    "- <=> +",
	chaososc.Drive1:   "O1",
	chaososc.Drive2:   "O2",
	chaososc.Freq1:    "F1",
	chaososc.Freq2:    "F2",
	chaososc.Fine1:    "F1.f",
	chaososc.Fine2:    "F2.f",
	chaososc.Mod2To1:  "M1",
	chaososc.Mod1To2:  "M2",
}

// ParameterName returns the short control name shown by the host.
func (p *Plugin) ParameterName(index int32) string {
	if index < 0 || int(index) >= chaososc.NumParams {
		return ""
	}
	return parameterNames[index]
}

// ParameterText formats the current value of a parameter for display.
func (p *Plugin) ParameterText(index int32) string {
	i := int(index)
	v := p.params.Get(i)
	switch i {
	case chaososc.LenRatio:
		return fmt.Sprintf("L1: %.2f, L2: %.2f", 1-v, v)
	case chaososc.Scale, chaososc.Drive1, chaososc.Drive2, chaososc.Fine1, chaososc.Fine2:
		return fmt.Sprintf("%.2f", v)
	case chaososc.Freq1, chaososc.Freq2:
		return fmt.Sprintf("%.2f", chaososc.OctaveDisplay(v))
	case chaososc.Mod2To1, chaososc.Mod1To2:
		return fmt.Sprintf("%.1f", chaososc.ModDepthPercent(v))
	default:
		return ""
	}
}

// ParameterLabel returns the unit suffix of a parameter's display text.
func (p *Plugin) ParameterLabel(index int32) string {
	switch int(index) {
	case chaososc.Freq1, chaososc.Freq2:
		return "oct"
	case chaososc.Mod2To1, chaososc.Mod1To2:
		return "%"
	default:
		return ""
	}
}
