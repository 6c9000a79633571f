package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/biz"
	"github.com/kart-io/onboarding-assistant/pkg/utils/response"
)

// Ask answers a question from the knowledge base.
func (h *Handler) Ask(c *gin.Context) {
	var req model.AskRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	answer, err := h.svc.Answerer.Answer(c.Request.Context(), &biz.AnswerRequest{
		Question:   req.Question,
		Filter:     biz.Filter{SourceDocumentID: req.SourceDocumentID},
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, answer)
}
