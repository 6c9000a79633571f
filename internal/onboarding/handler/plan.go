package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/response"
)

// GeneratePlan generates a new plan version for an employee.
func (h *Handler) GeneratePlan(c *gin.Context) {
	res, err := h.svc.Plans.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, res)
}

// GetPlan returns the latest plan with its checklist.
func (h *Handler) GetPlan(c *gin.Context) {
	res, err := h.svc.Plans.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, res)
}

// GetChecklist returns the latest checklist, generating a plan first when
// the employee has none.
func (h *Handler) GetChecklist(c *gin.Context) {
	res, err := h.svc.Checklist.GetOrGenerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{
		"plan_id":   res.Plan.ID,
		"version":   res.Plan.Version,
		"checklist": res.Checklist,
	})
}

// UpdateTask sets the status of a checklist task.
func (h *Handler) UpdateTask(c *gin.Context) {
	var req model.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	item, err := h.svc.Checklist.UpdateTaskStatus(c.Request.Context(), c.Param("id"), c.Param("task_id"), req.Status, req.Notes)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, item)
}

// GetProgress summarizes checklist completion.
func (h *Handler) GetProgress(c *gin.Context) {
	p, err := h.svc.Checklist.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, p)
}
