package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "transcriptutorial/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the interaction fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive dataset downloads
	// (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// InteractionsDir is the directory snapshots are written to
	// (default "data/interactions").
	InteractionsDir string `json:"interactions_dir" yaml:"interactions_dir"`

	// Organism is the NCBI taxonomy identifier to fetch interactions for
	// (default 9606, human).
	Organism int `json:"organism" yaml:"organism"`

	// License restricts results to resources redistributable under the
	// given license tier: "academic" or "commercial". Empty fetches the
	// freely redistributable subset only.
	License string `json:"license,omitempty" yaml:"license,omitempty"`
}

// StoreConfig holds settings for the interaction store stage.
type StoreConfig struct {
	// IndexDir is the directory holding the SQLite index
	// (default "data/index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// NetworkConfig holds settings for the network build stage.
type NetworkConfig struct {
	// NetworksDir is the directory built networks are written to
	// (default "networks").
	NetworksDir string `json:"networks_dir" yaml:"networks_dir"`

	// Datasets lists the snapshot collections to build from
	// (default ["omnipath"]).
	Datasets []string `json:"datasets" yaml:"datasets"`

	// MinCurationEffort drops records below the given curation effort.
	// Zero keeps everything.
	MinCurationEffort int `json:"min_curation_effort" yaml:"min_curation_effort"`
}

// MeasurementsConfig holds settings for the measurement staging stage.
type MeasurementsConfig struct {
	// MeasurementsDir is the directory measurement tables are written to
	// (default "measurements").
	MeasurementsDir string `json:"measurements_dir" yaml:"measurements_dir"`

	// TopN is the number of regulators kept per condition, ranked by
	// absolute score (default 50). Zero keeps everything.
	TopN int `json:"top_n" yaml:"top_n"`

	// ZScale standardizes scores to zero mean and unit variance before
	// staging.
	ZScale bool `json:"z_scale" yaml:"z_scale"`
}

// SolverBackend identifies the ILP solver CARNIVAL is invoked with.
type SolverBackend string

const (
	SolverLPSolve SolverBackend = "lpSolve"
	SolverCPLEX   SolverBackend = "cplex"
	SolverCBC     SolverBackend = "cbc"
)

// CarnivalConfig holds settings for job staging and solver invocation.
type CarnivalConfig struct {
	// JobsDir is the directory jobs are staged under
	// (default "carnival/jobs").
	JobsDir string `json:"jobs_dir" yaml:"jobs_dir"`

	// Image is the container image the solver runs in.
	Image string `json:"image" yaml:"image"`

	// Solver selects the ILP backend: lpSolve, cplex, or cbc.
	Solver SolverBackend `json:"solver" yaml:"solver"`

	// TimeLimit bounds solver run time (default 1h).
	TimeLimit time.Duration `json:"time_limit" yaml:"time_limit"`

	// MIPGap is the relative optimality gap the solver may stop at
	// (default 0.05).
	MIPGap float64 `json:"mip_gap" yaml:"mip_gap"`

	// BetaWeight weighs node penalties against edge penalties in the
	// objective (default 0.2).
	BetaWeight float64 `json:"beta_weight" yaml:"beta_weight"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Fetch        FetchConfig        `json:"fetch" yaml:"fetch"`
	Store        StoreConfig        `json:"store" yaml:"store"`
	Network      NetworkConfig      `json:"network" yaml:"network"`
	Measurements MeasurementsConfig `json:"measurements" yaml:"measurements"`
	Carnival     CarnivalConfig     `json:"carnival" yaml:"carnival"`
}
