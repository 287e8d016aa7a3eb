package splittimer

// Color is the tint of the split flash.
type Color int

const (
	ColorWhite Color = iota
	ColorRed
	ColorGreen
)

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	default:
		return "white"
	}
}

// Verdict is the outcome of comparing a split against the fastest known split.
type Verdict int

const (
	VerdictTie Verdict = iota
	VerdictSlower
	VerdictFaster
)

func (v Verdict) String() string {
	switch v {
	case VerdictSlower:
		return "slower"
	case VerdictFaster:
		return "faster"
	default:
		return "tie"
	}
}

// Color maps slower to red, faster to green and a tie to white.
func (v Verdict) Color() Color {
	switch v {
	case VerdictSlower:
		return ColorRed
	case VerdictFaster:
		return ColorGreen
	default:
		return ColorWhite
	}
}

// Compare classifies elapsed against fastest using the sign of fastest-elapsed.
func Compare(fastest, elapsed float64) Verdict {
	delta := fastest - elapsed
	switch {
	case delta < 0:
		return VerdictSlower
	case delta > 0:
		return VerdictFaster
	default:
		return VerdictTie
	}
}
