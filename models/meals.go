package models

// MealPlanComponent describes what a meal plan provides.
type MealPlanComponent struct {
	NumberOfUnits int    `json:"numberOfUnits" yaml:"numberOfUnits"`
	UnitType      string `json:"unitType" yaml:"unitType"`
	TimePeriod    string `json:"timePeriod,omitempty" yaml:"timePeriod"`
}

// MealPlan is a meal plan offered by the institution.
type MealPlan struct {
	CodeItem   `yaml:",inline"`
	StartOn    string             `json:"startOn,omitempty" yaml:"startOn"`
	EndOn      string             `json:"endOn,omitempty" yaml:"endOn"`
	Status     string             `json:"status,omitempty" yaml:"status"`
	Component  *MealPlanComponent `json:"component,omitempty" yaml:"component"`
	RatePeriod string             `json:"ratePeriod,omitempty" yaml:"ratePeriod"`
}

// MealPlanRequest is a student's request to be assigned a meal plan.
type MealPlanRequest struct {
	ID             string      `json:"id" yaml:"id"`
	Person         GUIDObject  `json:"person" yaml:"person"`
	MealPlan       GUIDObject  `json:"mealPlan" yaml:"mealPlan"`
	AcademicPeriod *GUIDObject `json:"academicPeriod,omitempty" yaml:"academicPeriod"`
	Status         string      `json:"status" yaml:"status" validate:"required,oneof=submitted approved rejected waitlisted"`
	SubmittedOn    string      `json:"submittedOn,omitempty" yaml:"submittedOn"`
	StartOn        string      `json:"startOn,omitempty" yaml:"startOn"`
	EndOn          string      `json:"endOn,omitempty" yaml:"endOn"`
}

func (m MealPlanRequest) Identifier() string {
	return m.ID
}

func (m *MealPlanRequest) SetIdentifier(id string) {
	m.ID = id
}
