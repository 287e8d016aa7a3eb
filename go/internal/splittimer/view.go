package splittimer

// View is a render snapshot of the widget.
type View struct {
	Enabled bool

	PrimaryText       string
	PrimaryVisible    bool
	CheckpointText    string
	CheckpointVisible bool
	ComparisonText    string
	ComparisonVisible bool

	// OverlayAlpha gates the labels; 0 hides the whole overlay.
	OverlayAlpha float64
	FlashAlpha   float64
	FlashColor   Color
}

// OverlayShown reports whether anything of the label overlay should be drawn.
func (v View) OverlayShown() bool {
	return v.OverlayAlpha > 0
}

// View returns the current render snapshot.
func (w *Widget) View() View {
	return View{
		Enabled:           w.enabled,
		PrimaryText:       w.primaryText,
		PrimaryVisible:    w.primaryVisible,
		CheckpointText:    w.checkpointText,
		CheckpointVisible: w.checkpointVisible,
		ComparisonText:    w.comparisonText,
		ComparisonVisible: w.comparisonVisible,
		OverlayAlpha:      w.overlayAlpha,
		FlashAlpha:        w.flashAlpha,
		FlashColor:        w.flashColor,
	}
}
