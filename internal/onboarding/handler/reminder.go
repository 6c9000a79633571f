package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
	"github.com/kart-io/onboarding-assistant/pkg/utils/response"
)

// AddReminder schedules a reminder for an employee.
func (h *Handler) AddReminder(c *gin.Context) {
	var req model.CreateReminderRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	r, err := h.svc.Reminders.AddReminder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, r)
}

// ListReminders lists an employee's reminders.
func (h *Handler) ListReminders(c *gin.Context) {
	list, err := h.svc.Reminders.ListReminders(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, list)
}

// PendingReminders lists unsent reminders due before the "before" query
// parameter (RFC 3339, default now).
func (h *Handler) PendingReminders(c *gin.Context) {
	before := time.Now()
	if raw := c.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Fail(c, errors.ErrInvalidParam.WithCause(err).WithMessage("before must be an RFC 3339 timestamp"))
			return
		}
		before = t
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		response.Fail(c, err)
		return
	}

	list, err := h.svc.Reminders.PendingReminders(c.Request.Context(), before, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, list)
}

// MarkReminderSent records a delivered reminder.
func (h *Handler) MarkReminderSent(c *gin.Context) {
	if err := h.svc.Reminders.MarkReminderSent(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id"), "status": model.ReminderStatusSent})
}
