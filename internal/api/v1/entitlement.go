package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cohortly/cohortly/internal/api/dto"
	"github.com/cohortly/cohortly/internal/domain/cohort"
	"github.com/cohortly/cohortly/internal/domain/plan"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/logger"
	"github.com/cohortly/cohortly/internal/service"
)

type EntitlementHandler struct {
	entitlementService service.EntitlementService
	planRepo           plan.Repository
	cohortRepo         cohort.Repository
	log                *logger.Logger
}

func NewEntitlementHandler(
	entitlementService service.EntitlementService,
	planRepo plan.Repository,
	cohortRepo cohort.Repository,
	log *logger.Logger,
) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
		planRepo:           planRepo,
		cohortRepo:         cohortRepo,
		log:                log,
	}
}

// GetAccountEntitlements handles GET /v1/accounts/:id/entitlements.
func (h *EntitlementHandler) GetAccountEntitlements(c *gin.Context) {
	resp, err := h.entitlementService.GetAccountEntitlements(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPlan handles GET /v1/plans/:id.
func (h *EntitlementHandler) GetPlan(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("plan ID is required").
			WithHint("Please provide a valid plan ID").
			Mark(ierr.ErrValidation))
		return
	}

	p, err := h.planRepo.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.PlanResponse{Plan: p})
}

// GetCohort handles GET /v1/cohorts/:id.
func (h *EntitlementHandler) GetCohort(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("cohort ID is required").
			WithHint("Please provide a valid cohort ID").
			Mark(ierr.ErrValidation))
		return
	}

	coh, err := h.cohortRepo.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.CohortResponse{Cohort: coh})
}
