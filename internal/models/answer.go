package models

// Severity grades a finding in an answer's error_risks list.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every accepted severity in ascending order.
var Severities = []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// TransformationStep describes one step of the analysed transformation.
type TransformationStep struct {
	Step        int     `json:"step"`
	Description string  `json:"description"`
	Formula     *string `json:"formula,omitempty"`
	Improvement *string `json:"improvement,omitempty"`
}

// Finding is a risk or error found in the transformation.
type Finding struct {
	Severity Severity `json:"severity"`
	Source   string   `json:"source"`
	Fix      string   `json:"fix"`
}

// StructuredAnswer is a model answer that passed schema validation.
// Values are produced by validation.Parse only.
type StructuredAnswer struct {
	TransformationUnderstanding string               `json:"transformation_understanding"`
	DataLineage                 []string             `json:"data_lineage"`
	Transformations             []TransformationStep `json:"transformations"`
	ComputationsValid           bool                 `json:"computations_valid"`
	ComputationDetails          *string              `json:"computation_details,omitempty"`
	ErrorRisks                  []Finding            `json:"error_risks"`
	FinalFeedback               string               `json:"final_feedback"`
}

// ResultRecord is the artifact written for a successful job: the answer
// fields flattened together with run metadata.
type ResultRecord struct {
	StructuredAnswer

	SourceFile          string  `json:"_source_file"`
	Model               string  `json:"_model"`
	DurationSeconds     float64 `json:"_duration_seconds"`
	ResponseCharCount   int     `json:"_response_char_count"`
	CorrectionAttempted bool    `json:"_correction_attempted,omitempty"`
}

// ErrorRecord is the artifact written for a job that failed irrecoverably.
type ErrorRecord struct {
	CaseID string `json:"case_id"`
	Error  string `json:"error"`
}

// ModelSummary holds the statistics of one model over a run.
type ModelSummary struct {
	SampleCount        int                 `json:"sample_count"`
	MeanChars          float64             `json:"mean_chars"`
	MeanDuration       float64             `json:"mean_duration_seconds"`
	DurationStdDev     float64             `json:"duration_stddev_seconds"`
	CharsPerSecond     float64             `json:"chars_per_second"`
	SecondsPer100Chars float64             `json:"seconds_per_100_chars"`
	DurationCI95       *ConfidenceInterval `json:"duration_ci95,omitempty"`
}

// ConfidenceInterval is a bootstrap interval around a mean.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Mean  float64 `json:"mean"`
}
