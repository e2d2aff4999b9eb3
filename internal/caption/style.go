package caption

// font weight for burned-in text
type Weight string

const (
	WeightNormal Weight = "normal"
	WeightBold   Weight = "bold"
	WeightHeavy  Weight = "heavy"
)

// Style describes how caption text is rendered. Immutable during a
// single render or export pass.
type Style struct {
	FontFamily         string
	FontSizePercent    float64 // of frame height
	StrokeWidthPercent float64 // of the computed font size
	Weight             Weight
	Color              string // hex, e.g. "#FFFFFF"
}

func DefaultStyle() Style {
	return Style{
		FontFamily:         "sans-serif",
		FontSizePercent:    5,
		StrokeWidthPercent: 12,
		Weight:             WeightNormal,
		Color:              "#FFFFFF",
	}
}

func ParseWeight(s string) (Weight, bool) {
	switch Weight(s) {
	case WeightNormal, WeightBold, WeightHeavy:
		return Weight(s), true
	default:
		return WeightNormal, false
	}
}
