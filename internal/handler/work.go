package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// NextTriplet returns the triplet the generator should write next
func (h *Handler) NextTriplet(c *gin.Context) {
	c.JSON(http.StatusOK, h.generator.Next(c.Query("triplet_id")))
}

// SubmitTriplet stores the three generated sentences
func (h *Handler) SubmitTriplet(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	triplet, err := h.generator.Submit(c.Param("id"), userID(c), req)
	if err != nil {
		h.fail(c, err, "Failed to submit triplet")
		return
	}
	c.JSON(http.StatusOK, triplet)
}

// Drafts suggests sentences for a pending triplet
func (h *Handler) Drafts(c *gin.Context) {
	drafts, err := h.generator.Drafts(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "draft generation failed")
		return
	}
	c.JSON(http.StatusOK, drafts)
}

// NextSentence returns the sentence the annotator should label next
func (h *Handler) NextSentence(c *gin.Context) {
	c.JSON(http.StatusOK, h.annotator.Next(userID(c)))
}

// SubmitLabel records one label
func (h *Handler) SubmitLabel(c *gin.Context) {
	var req models.LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Label must be one of stereotype, anti-stereotype, unrelated"})
		return
	}

	result, err := h.annotator.Submit(userID(c), req)
	if err != nil {
		h.fail(c, err, "Failed to submit label")
		return
	}
	c.JSON(http.StatusOK, result)
}
