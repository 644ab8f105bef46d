package models

// Term is a legacy Colleague term keyed by its code.
type Term struct {
	Code          string `json:"Code" yaml:"code"`
	Description   string `json:"Description" yaml:"description"`
	StartDate     string `json:"StartDate" yaml:"startDate"`
	EndDate       string `json:"EndDate" yaml:"endDate"`
	ReportingYear int    `json:"ReportingYear" yaml:"reportingYear"`
	Sequence      int    `json:"Sequence" yaml:"sequence"`
	ReportingTerm string `json:"ReportingTerm,omitempty" yaml:"reportingTerm"`
	DefaultOnPlan bool   `json:"DefaultOnPlan" yaml:"defaultOnPlan"`
}

func (t Term) Identifier() string {
	return t.Code
}
