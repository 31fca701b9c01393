package text

const (
	DefaultAreaColor       = "white"
	DefaultAreaActiveColor = "white"
	DefaultFontSize        = 12
	DefaultFontWeight      = FontWeightNormal
	DefaultTextColor       = "black"
	DefaultFontFamily      = "Arial"
)

// ResolveBlock fills unset block fields with defaults.
func ResolveBlock(b Block) Block {
	if b.FontSize == 0 {
		b.FontSize = DefaultFontSize
	}
	if b.FontWeight == "" {
		b.FontWeight = DefaultFontWeight
	}
	if b.Color == "" {
		b.Color = DefaultTextColor
	}
	if b.FontFamily == "" {
		b.FontFamily = DefaultFontFamily
	}
	return b
}

// ResolveArea fills unset area and block fields with defaults.
func ResolveArea(a Area) Area {
	a.TextBlock = ResolveBlock(a.TextBlock)
	if a.Color == "" {
		a.Color = DefaultAreaColor
	}
	if a.ActiveColor == "" {
		a.ActiveColor = DefaultAreaActiveColor
	}
	return a
}

// Resolve returns a resolved copy of a, or nil when a is nil.
func Resolve(a *Area) *Area {
	if a == nil {
		return nil
	}
	r := ResolveArea(*a)
	return &r
}
