package proctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowGapDetector(t *testing.T) {
	d := WindowGapDetector{}

	cases := []struct {
		name string
		m    WindowMetrics
		open bool
	}{
		{"no geometry yet", WindowMetrics{}, false},
		{"normal chrome", WindowMetrics{OuterWidth: 1920, OuterHeight: 1080, InnerWidth: 1912, InnerHeight: 1000}, false},
		{"docked bottom", WindowMetrics{OuterWidth: 1920, OuterHeight: 1080, InnerWidth: 1920, InnerHeight: 700}, true},
		{"docked side", WindowMetrics{OuterWidth: 1920, OuterHeight: 1080, InnerWidth: 1400, InnerHeight: 1000}, true},
		{"exactly at threshold", WindowMetrics{OuterWidth: 1920, OuterHeight: 1080, InnerWidth: 1920 - DefaultDevtoolsGapPixels, InnerHeight: 1000}, false},
		{"one past threshold", WindowMetrics{OuterWidth: 1920, OuterHeight: 1080, InnerWidth: 1920 - DefaultDevtoolsGapPixels - 1, InnerHeight: 1000}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.open, d.Open(tc.m))
		})
	}
}

func TestWindowGapDetector_CustomThreshold(t *testing.T) {
	d := WindowGapDetector{Threshold: 50}
	m := WindowMetrics{OuterWidth: 1000, OuterHeight: 800, InnerWidth: 940, InnerHeight: 800}
	assert.True(t, d.Open(m))
	assert.False(t, WindowGapDetector{Threshold: 100}.Open(m))
}

func TestDisabledDetector(t *testing.T) {
	m := WindowMetrics{OuterWidth: 1920, OuterHeight: 1080, InnerWidth: 100, InnerHeight: 100}
	assert.False(t, DisabledDetector{}.Open(m))
}
