package models

// TestScore is the value a student achieved on an assessment.
type TestScore struct {
	Type  string  `json:"type" yaml:"type"`
	Value float64 `json:"value" yaml:"value"`
}

// StudentTestScore is a student's result on an admissions or placement test.
type StudentTestScore struct {
	ID         string      `json:"id" yaml:"id"`
	Student    GUIDObject  `json:"student" yaml:"student"`
	Assessment GUIDObject  `json:"assessment" yaml:"assessment"`
	AssessedOn string      `json:"assessedOn" yaml:"assessedOn"`
	Score      TestScore   `json:"score" yaml:"score"`
	Source     *GUIDObject `json:"source,omitempty" yaml:"source"`
	Status     string      `json:"status,omitempty" yaml:"status"`
}

func (s StudentTestScore) Identifier() string {
	return s.ID
}

// Test is a legacy Colleague test definition.
type Test struct {
	Code         string `json:"Code" yaml:"code"`
	Description  string `json:"Description" yaml:"description"`
	Type         string `json:"Type" yaml:"type"`
	MinimumScore int    `json:"MinimumScore" yaml:"minimumScore"`
	MaximumScore int    `json:"MaximumScore" yaml:"maximumScore"`
}

func (t Test) Identifier() string {
	return t.Code
}
