package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revisa-edu/assessment-service/internal/services"
	"github.com/revisa-edu/assessment-service/internal/utils"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
	validator     *utils.Validator
}

func NewReviewHandler(
	reviewService services.ReviewService,
	validator *utils.Validator,
	logger utils.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
		validator:     validator,
	}
}

// ReviewAnswer records a tutor verdict on an open answer
// @Summary Review open answer
// @Description Marks an open answer correct or incorrect; finalizes the attempt when it was the last pending one
// @Tags reviews
// @Accept json
// @Produce json
// @Param answer_id path uint true "Attempt answer ID"
// @Param request body services.ReviewAnswerRequest true "Verdict"
// @Success 200 {object} services.ReviewAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /reviews/answers/{answer_id} [post]
func (h *ReviewHandler) ReviewAnswer(c *gin.Context) {
	answerID := h.parseIDParam(c, "answer_id")
	if answerID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req services.ReviewAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Reviewing answer", "answer_id", answerID)

	resp, err := h.reviewService.ReviewOpenAnswer(c.Request.Context(), answerID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListPendingReviews lists attempts with open answers awaiting review
// @Summary List pending reviews
// @Description Lists submitted attempts that still have unreviewed open answers, oldest first
// @Tags reviews
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} services.PendingReviewsResponse
// @Failure 403 {object} ErrorResponse
// @Router /reviews/pending [get]
func (h *ReviewHandler) ListPendingReviews(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	page, pageSize := parsePageParams(c)

	h.LogRequest(c, "Listing pending reviews", "page", page, "page_size", pageSize)

	resp, err := h.reviewService.ListPendingReviews(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
