// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ActivityScore is one regulator activity estimate produced by an upstream
// footprint method (transcription factor activities from DoRothEA regulons,
// pathway scores from PROGENy weights). Scores arrive per experimental
// condition; the measurement stage selects one condition and projects the
// scores onto network nodes.
type ActivityScore struct {
	// Source is the regulator the score belongs to (a transcription factor
	// gene symbol or a pathway name).
	Source string `json:"source" yaml:"source"`

	// Condition names the sample or contrast the score was estimated for.
	Condition string `json:"condition" yaml:"condition"`

	// Score is the activity estimate, signed; positive means active.
	Score float64 `json:"score" yaml:"score"`

	// PValue is the significance of the estimate, when the method reports
	// one. Zero means not reported.
	PValue float64 `json:"p_value,omitempty" yaml:"p_value,omitempty"`
}
