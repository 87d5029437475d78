package temporal

import "fmt"

// Warning stages.
const (
	StageValidator = "validator"
	StageScene     = "scene"
	StageSubtitle  = "subtitle"
)

// Validation warning codes.
const (
	WarnNegativeTime       = "negative_time"
	WarnClampedInterval    = "clamped_interval"
	WarnOverlapResolved    = "overlap_resolved"
	WarnDurationSmoothed   = "duration_smoothed"
	WarnDurationBelowFloor = "duration_below_floor"
)

// Segmentation overflow codes. The oversized unit is kept whole.
const (
	WarnOversizedScene = "oversized_scene"
	WarnOversizedCue   = "oversized_cue"
)

// Warning records a non-fatal anomaly that was corrected or tolerated.
// Index refers to a word for validator warnings, a scene order for scene
// warnings and a cue order for subtitle warnings.
type Warning struct {
	Code   string `json:"code"`
	Stage  string `json:"stage"`
	Index  int    `json:"index"`
	Detail string `json:"detail,omitempty"`
}

func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s/%s #%d", w.Stage, w.Code, w.Index)
	}
	return fmt.Sprintf("%s/%s #%d: %s", w.Stage, w.Code, w.Index, w.Detail)
}

// IsOverflow reports whether the warning marks an oversized unit rather than
// a timing correction.
func (w Warning) IsOverflow() bool {
	return w.Code == WarnOversizedScene || w.Code == WarnOversizedCue
}
