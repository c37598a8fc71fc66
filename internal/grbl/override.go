package grbl

import "fmt"

// GRBL clamps feed and spindle overrides to this range; requests outside
// it could never be reached by stepping and are rejected up front.
const (
	overrideMin = 10
	overrideMax = 200
)

// feedOverrideBytes maps an absolute feed target percentage onto the
// firmware's coarse step protocol: the single reset byte for exactly
// 100%, otherwise one ±10% byte per 10% of distance from 100 (rounded
// up). The firmware only moves in fixed steps, so targets that are not a
// multiple of 10 land on the nearest step beyond.
func feedOverrideBytes(target int) ([]byte, error) {
	return stepBytes(target, rtFeedReset, rtFeedPlus10, rtFeedMinus10)
}

// spindleOverrideBytes is the spindle analogue of feedOverrideBytes.
func spindleOverrideBytes(target int) ([]byte, error) {
	return stepBytes(target, rtSpindleReset, rtSpindlePlus10, rtSpindleMinus10)
}

// rapidOverrideByte maps a rapid target onto the three fixed levels the
// firmware defines. Anything but 25, 50 or 100 is invalid input.
func rapidOverrideByte(target int) (byte, error) {
	switch target {
	case 25:
		return rtRapidQuarter, nil
	case 50:
		return rtRapidHalf, nil
	case 100:
		return rtRapidFull, nil
	default:
		return 0, fmt.Errorf("rapid override must be 25, 50 or 100, got %d", target)
	}
}

func stepBytes(target int, reset, plus, minus byte) ([]byte, error) {
	if target == 100 {
		return []byte{reset}, nil
	}
	if target < overrideMin || target > overrideMax {
		return nil, fmt.Errorf("override target %d%% outside %d-%d%%", target, overrideMin, overrideMax)
	}

	step := plus
	diff := target - 100
	if diff < 0 {
		step = minus
		diff = -diff
	}
	n := (diff + 9) / 10 // ceil(diff/10)

	seq := make([]byte, n)
	for i := range seq {
		seq[i] = step
	}
	return seq, nil
}
