package services

import (
	"context"

	"github.com/eedm-api/student-services/internal/cache"
	"github.com/eedm-api/student-services/internal/events"
	"github.com/eedm-api/student-services/models"
)

var (
	AcademicStandings  = Descriptor{Name: "academic-standings", EEDM: true, Versions: []int{6}, Cached: true}
	AcademicLevels     = Descriptor{Name: "academic-levels", EEDM: true, Versions: []int{6}, Cached: true}
	AcademicPeriods    = Descriptor{Name: "academic-periods", EEDM: true, Versions: []int{16}, Cached: true, Pageable: true}
	CourseStatuses     = Descriptor{Name: "course-statuses", EEDM: true, Versions: []int{6}, Cached: true}
	EnrollmentStatuses = Descriptor{Name: "enrollment-statuses", EEDM: true, Versions: []int{6}, Cached: true}
	GradeSchemes       = Descriptor{Name: "grade-schemes", EEDM: true, Versions: []int{6}, Cached: true}
	MealPlans          = Descriptor{Name: "meal-plans", EEDM: true, Versions: []int{10}, Cached: true}
	MealPlanRequests   = Descriptor{
		Name:             "meal-plan-requests",
		EEDM:             true,
		Versions:         []int{10},
		ViewPermission:   "VIEW.MEAL.PLAN.REQUEST",
		UpdatePermission: "CREATE.MEAL.PLAN.REQUEST",
		Writable:         true,
		Pageable:         true,
	}
	ResidencyTypes              = Descriptor{Name: "residency-types", EEDM: true, Versions: []int{7}, Cached: true}
	SectionRegistrationStatuses = Descriptor{Name: "section-registration-statuses", EEDM: true, Versions: []int{8}, Cached: true}
	StudentCohorts              = Descriptor{Name: "student-cohorts", EEDM: true, Versions: []int{7}, Cached: true}
	StudentTypes                = Descriptor{Name: "student-types", EEDM: true, Versions: []int{7}, Cached: true}
	StudentTestScores           = Descriptor{
		Name:           "student-test-scores",
		EEDM:           true,
		Versions:       []int{6},
		ViewPermission: "VIEW.STUDENT.TEST.SCORES",
		Pageable:       true,
	}
	Terms = Descriptor{Name: "terms", Versions: []int{1}, Cached: true}
	Tests = Descriptor{Name: "tests", Versions: []int{1}, Cached: true}
)

// Warmer preloads a resource into the cache.
type Warmer interface {
	Descriptor() Descriptor
	Warm(ctx context.Context) (int, error)
}

// Catalog holds the coordination service of every exposed resource.
type Catalog struct {
	AcademicStandings           *ResourceService[models.AcademicStanding]
	AcademicLevels              *ResourceService[models.AcademicLevel]
	AcademicPeriods             *ResourceService[models.AcademicPeriod]
	CourseStatuses              *ResourceService[models.CourseStatus]
	EnrollmentStatuses          *ResourceService[models.EnrollmentStatus]
	GradeSchemes                *ResourceService[models.GradeScheme]
	MealPlans                   *ResourceService[models.MealPlan]
	MealPlanRequests            *ResourceService[models.MealPlanRequest]
	ResidencyTypes              *ResourceService[models.ResidencyType]
	SectionRegistrationStatuses *ResourceService[models.SectionRegistrationStatus]
	StudentCohorts              *ResourceService[models.StudentCohort]
	StudentTypes                *ResourceService[models.StudentType]
	StudentTestScores           *ResourceService[models.StudentTestScore]
	Terms                       *ResourceService[models.Term]
	Tests                       *ResourceService[models.Test]
}

func NewCatalog(store Store, c cache.Cache, n events.Notifier) *Catalog {
	return &Catalog{
		AcademicStandings:           NewResourceService[models.AcademicStanding](AcademicStandings, store, c, n),
		AcademicLevels:              NewResourceService[models.AcademicLevel](AcademicLevels, store, c, n),
		AcademicPeriods:             NewResourceService[models.AcademicPeriod](AcademicPeriods, store, c, n),
		CourseStatuses:              NewResourceService[models.CourseStatus](CourseStatuses, store, c, n),
		EnrollmentStatuses:          NewResourceService[models.EnrollmentStatus](EnrollmentStatuses, store, c, n),
		GradeSchemes:                NewResourceService[models.GradeScheme](GradeSchemes, store, c, n),
		MealPlans:                   NewResourceService[models.MealPlan](MealPlans, store, c, n),
		MealPlanRequests:            NewResourceService[models.MealPlanRequest](MealPlanRequests, store, c, n),
		ResidencyTypes:              NewResourceService[models.ResidencyType](ResidencyTypes, store, c, n),
		SectionRegistrationStatuses: NewResourceService[models.SectionRegistrationStatus](SectionRegistrationStatuses, store, c, n),
		StudentCohorts:              NewResourceService[models.StudentCohort](StudentCohorts, store, c, n),
		StudentTypes:                NewResourceService[models.StudentType](StudentTypes, store, c, n),
		StudentTestScores:           NewResourceService[models.StudentTestScore](StudentTestScores, store, c, n),
		Terms:                       NewResourceService[models.Term](Terms, store, c, n),
		Tests:                       NewResourceService[models.Test](Tests, store, c, n),
	}
}

// Warmers returns the services whose resources are served from the cache.
func (c *Catalog) Warmers() []Warmer {
	all := []Warmer{
		c.AcademicStandings, c.AcademicLevels, c.AcademicPeriods, c.CourseStatuses,
		c.EnrollmentStatuses, c.GradeSchemes, c.MealPlans, c.MealPlanRequests,
		c.ResidencyTypes, c.SectionRegistrationStatuses, c.StudentCohorts,
		c.StudentTypes, c.StudentTestScores, c.Terms, c.Tests,
	}

	var cached []Warmer
	for _, w := range all {
		if w.Descriptor().Cached {
			cached = append(cached, w)
		}
	}
	return cached
}

// Descriptors lists every resource in the catalog.
func Descriptors() []Descriptor {
	return []Descriptor{
		AcademicStandings, AcademicLevels, AcademicPeriods, CourseStatuses,
		EnrollmentStatuses, GradeSchemes, MealPlans, MealPlanRequests,
		ResidencyTypes, SectionRegistrationStatuses, StudentCohorts,
		StudentTypes, StudentTestScores, Terms, Tests,
	}
}

// Lookup finds a descriptor by resource name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Descriptors() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
