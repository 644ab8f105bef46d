package models

// AcademicStanding is an academic standing code (good standing, probation, ...).
type AcademicStanding struct {
	CodeItem `yaml:",inline"`
}

// AcademicLevel is a level of study such as undergraduate or graduate.
type AcademicLevel struct {
	CodeItem `yaml:",inline"`
}

// AcademicPeriodCategory places a period within the term hierarchy.
type AcademicPeriodCategory struct {
	Type      string      `json:"type" yaml:"type"`
	Parent    *GUIDObject `json:"parent,omitempty" yaml:"parent"`
	Preceding *GUIDObject `json:"preceding,omitempty" yaml:"preceding"`
}

// AcademicPeriod is a year, term or subterm.
type AcademicPeriod struct {
	CodeItem     `yaml:",inline"`
	StartOn      string                 `json:"startOn,omitempty" yaml:"startOn"`
	EndOn        string                 `json:"endOn,omitempty" yaml:"endOn"`
	Category     AcademicPeriodCategory `json:"category" yaml:"category"`
	Registration string                 `json:"registration,omitempty" yaml:"registration"`
	CensusDates  []string               `json:"censusDates,omitempty" yaml:"censusDates"`
}

// GradeScheme is a set of grades applicable to an academic level.
type GradeScheme struct {
	CodeItem      `yaml:",inline"`
	AcademicLevel *GUIDObject `json:"academicLevel,omitempty" yaml:"academicLevel"`
	StartOn       string      `json:"startOn,omitempty" yaml:"startOn"`
	EndOn         string      `json:"endOn,omitempty" yaml:"endOn"`
}
