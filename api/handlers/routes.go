package handlers

import (
	"net/http"

	"github.com/eedm-api/student-services/api/services"
	"github.com/eedm-api/student-services/internal/appconfig"
	"github.com/eedm-api/student-services/models"
	"github.com/gorilla/mux"
)

// Register mounts a resource's collection and item routes on api.
func Register[T models.Resource](api *mux.Router, svc services.Service[T], paging appconfig.PagingConfig) {
	desc := svc.Descriptor()

	r := api.PathPrefix("/" + desc.Name).Subrouter()
	r.Use(Negotiate(desc))

	r.HandleFunc("", GetAll(svc, paging)).Methods(http.MethodGet)
	r.HandleFunc("", Create(svc)).Methods(http.MethodPost)
	r.HandleFunc("/{id}", GetByID(svc)).Methods(http.MethodGet)
	r.HandleFunc("/{id}", Update(svc)).Methods(http.MethodPut)
	r.HandleFunc("/{id}", NotSupported(desc)).Methods(http.MethodDelete)
}

// RegisterCatalog mounts every resource of the catalog.
func RegisterCatalog(api *mux.Router, c *services.Catalog, paging appconfig.PagingConfig) {
	Register[models.AcademicStanding](api, c.AcademicStandings, paging)
	Register[models.AcademicLevel](api, c.AcademicLevels, paging)
	Register[models.AcademicPeriod](api, c.AcademicPeriods, paging)
	Register[models.CourseStatus](api, c.CourseStatuses, paging)
	Register[models.EnrollmentStatus](api, c.EnrollmentStatuses, paging)
	Register[models.GradeScheme](api, c.GradeSchemes, paging)
	Register[models.MealPlan](api, c.MealPlans, paging)
	Register[models.MealPlanRequest](api, c.MealPlanRequests, paging)
	Register[models.ResidencyType](api, c.ResidencyTypes, paging)
	Register[models.SectionRegistrationStatus](api, c.SectionRegistrationStatuses, paging)
	Register[models.StudentCohort](api, c.StudentCohorts, paging)
	Register[models.StudentType](api, c.StudentTypes, paging)
	Register[models.StudentTestScore](api, c.StudentTestScores, paging)
	Register[models.Term](api, c.Terms, paging)
	Register[models.Test](api, c.Tests, paging)
}
