package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HansenDafa/indostereoset-annotation/internal/models"
)

// Stats returns the dashboard counters
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.admin.Stats())
}

// ListUsers returns every registered user
func (h *Handler) ListUsers(c *gin.Context) {
	users := h.admin.ListUsers()
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// AddUser registers one user
func (h *Handler) AddUser(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.admin.AddUser(req)
	if err != nil {
		h.fail(c, err, "Failed to add user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ImportUsers registers users from pasted id|name|password|role lines
func (h *Handler) ImportUsers(c *gin.Context) {
	var req models.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.admin.ImportUsers(req.Text)
	if err != nil {
		if len(result.Rows) > 0 {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "rows": result.Rows})
			return
		}
		h.fail(c, err, "Failed to import users")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListPending returns triplets that still need sentences
func (h *Handler) ListPending(c *gin.Context) {
	pending := h.admin.ListPending()
	c.JSON(http.StatusOK, gin.H{
		"triplets": pending,
		"total":    len(pending),
	})
}

// AddTriplet adds one context entry
func (h *Handler) AddTriplet(c *gin.Context) {
	var req models.TripletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	triplet, err := h.admin.AddTriplet(req)
	if err != nil {
		h.fail(c, err, "Failed to add triplet")
		return
	}
	c.JSON(http.StatusCreated, triplet)
}

// ImportTriplets adds context entries from pasted target|bias_type|context lines
func (h *Handler) ImportTriplets(c *gin.Context) {
	var req models.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.admin.ImportTriplets(req.Text)
	if err != nil {
		h.fail(c, err, "Failed to import triplets")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ExportJSON downloads every triplet as annotations.json
func (h *Handler) ExportJSON(c *gin.Context) {
	data, err := h.admin.ExportJSON()
	if err != nil {
		h.fail(c, err, "export failed")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=annotations.json")
	c.Data(http.StatusOK, "application/json", data)
}

// ExportCSV downloads every label as annotations.csv
func (h *Handler) ExportCSV(c *gin.Context) {
	data, err := h.admin.ExportCSV()
	if err != nil {
		h.fail(c, err, "export failed")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=annotations.csv")
	c.Data(http.StatusOK, "text/csv", data)
}

// ListExports returns the archived export history
func (h *Handler) ListExports(c *gin.Context) {
	records, err := h.admin.ListExports()
	if err != nil {
		h.fail(c, err, "failed to list exports")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exports": records,
		"total":   len(records),
	})
}

// GetExport downloads one archived export
func (h *Handler) GetExport(c *gin.Context) {
	rec, err := h.admin.GetExport(c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to get export")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=annotations-"+rec.ID+".json")
	c.Data(http.StatusOK, "application/json", []byte(rec.Payload))
}
