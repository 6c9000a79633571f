package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/response"
)

// CreateEmployee registers a new hire.
func (h *Handler) CreateEmployee(c *gin.Context) {
	var req model.CreateEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	emp, err := h.svc.Employees.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, emp)
}

// ListEmployees lists employees page by page.
func (h *Handler) ListEmployees(c *gin.Context) {
	page, pageSize, offset, err := pagination(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	total, list, err := h.svc.Employees.List(c.Request.Context(), offset, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Write(c, response.Page(list, total, page, pageSize))
}

// GetEmployee returns one employee.
func (h *Handler) GetEmployee(c *gin.Context) {
	emp, err := h.svc.Employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, emp)
}

// UpdateEmployee applies a partial update.
func (h *Handler) UpdateEmployee(c *gin.Context) {
	var req model.UpdateEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	emp, err := h.svc.Employees.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, emp)
}

// DeleteEmployee removes an employee with their plans and reminders.
func (h *Handler) DeleteEmployee(c *gin.Context) {
	if err := h.svc.Employees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"employee_id": c.Param("id")})
}
