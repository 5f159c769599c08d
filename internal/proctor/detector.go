package proctor

// Detector decides whether developer tools look open for a given window
// geometry. The heuristic is environment-dependent, so it is a strategy:
// shells can swap it, and test/CI environments disable it.
type Detector interface {
	Open(m WindowMetrics) bool
}

// WindowGapDetector flags devtools when the gap between outer and inner
// window dimensions exceeds Threshold pixels on either axis. Docked panels
// shrink the inner viewport; detached ones escape this check entirely,
// which is the known limit of the heuristic.
type WindowGapDetector struct {
	// Threshold in pixels. Zero means DefaultDevtoolsGapPixels.
	Threshold int
}

func (d WindowGapDetector) Open(m WindowMetrics) bool {
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultDevtoolsGapPixels
	}
	// No geometry reported yet.
	if m.OuterWidth == 0 && m.OuterHeight == 0 {
		return false
	}
	return m.OuterWidth-m.InnerWidth > threshold ||
		m.OuterHeight-m.InnerHeight > threshold
}

// DisabledDetector never reports devtools. Used by terminal shells (no
// window chrome to measure) and automated environments where the gap
// heuristic false-positives.
type DisabledDetector struct{}

func (DisabledDetector) Open(WindowMetrics) bool { return false }
