// Package fingerprint captures the client environment snapshot attached to
// every security event. The snapshot is taken once at session start and is
// read-only afterwards.
package fingerprint

import (
	"fmt"
	"runtime"
	"time"
)

// Fingerprint is the device snapshot shipped with audit events.
type Fingerprint struct {
	UserAgent           string    `json:"user_agent"`
	Languages           []string  `json:"languages"`
	Platform            string    `json:"platform"`
	HardwareConcurrency int       `json:"hardware_concurrency"`
	DeviceMemoryGB      float64   `json:"device_memory_gb,omitempty"`
	ScreenWidth         int       `json:"screen_width,omitempty"`
	ScreenHeight        int       `json:"screen_height,omitempty"`
	ColorDepth          int       `json:"color_depth,omitempty"`
	Timezone            string    `json:"timezone"`
	TimezoneOffsetMin   int       `json:"timezone_offset_min"`
	TouchSupport        bool      `json:"touch_support"`
	CookiesEnabled      bool      `json:"cookies_enabled"`
	CapturedAt          time.Time `json:"captured_at"`
}

// Prober captures a Fingerprint from the running environment. Shells that
// embed a browser supply a prober backed by the real navigator/screen
// objects; HostProber fills in what a native process can know.
type Prober interface {
	Probe() Fingerprint
}

// HostProber derives a fingerprint from the host process. Screen and
// browser-only fields stay zero and are omitted from the JSON.
type HostProber struct {
	// AppVersion is stamped into the synthesized user agent.
	AppVersion string
}

func (p HostProber) Probe() Fingerprint {
	version := p.AppVersion
	if version == "" {
		version = "dev"
	}
	zone, offsetSec := time.Now().Zone()

	return Fingerprint{
		UserAgent:           fmt.Sprintf("interview-client/%s (%s; %s)", version, runtime.GOOS, runtime.GOARCH),
		Languages:           []string{"en"},
		Platform:            runtime.GOOS,
		HardwareConcurrency: runtime.NumCPU(),
		Timezone:            zone,
		TimezoneOffsetMin:   offsetSec / 60,
		CapturedAt:          time.Now().UTC(),
	}
}

// Static wraps a pre-built Fingerprint as a Prober. Used by tests and by
// shells that capture the snapshot out-of-band.
type Static Fingerprint

func (s Static) Probe() Fingerprint { return Fingerprint(s) }
