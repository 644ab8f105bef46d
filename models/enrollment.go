package models

// CourseStatus is a status a course can be in (active, inactive, ...).
type CourseStatus struct {
	CodeItem `yaml:",inline"`
	Status   string `json:"status,omitempty" yaml:"status"`
}

// EnrollmentStatus describes a student's enrollment state.
type EnrollmentStatus struct {
	CodeItem             `yaml:",inline"`
	EnrollmentStatusType string `json:"enrollmentStatusType,omitempty" yaml:"enrollmentStatusType"`
}

// SectionRegistrationStatusDetail maps a Colleague status to its EEDM meaning.
type SectionRegistrationStatusDetail struct {
	RegistrationStatus              string `json:"registrationStatus" yaml:"registrationStatus"`
	SectionRegistrationStatusReason string `json:"sectionRegistrationStatusReason" yaml:"sectionRegistrationStatusReason"`
}

// SectionRegistrationStatus is a status a section registration can carry.
type SectionRegistrationStatus struct {
	CodeItem `yaml:",inline"`
	Status   SectionRegistrationStatusDetail `json:"status" yaml:"status"`
}

// StudentType classifies students (transfer, first time, ...).
type StudentType struct {
	CodeItem `yaml:",inline"`
}

// StudentCohort is a grouping of students for reporting.
type StudentCohort struct {
	CodeItem   `yaml:",inline"`
	CohortType string `json:"cohortType,omitempty" yaml:"cohortType"`
}

// ResidencyType is a residency classification used for tuition.
type ResidencyType struct {
	CodeItem `yaml:",inline"`
}
