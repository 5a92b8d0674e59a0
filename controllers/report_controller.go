package controllers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-platform/api"
	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/results"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GET /api/surveys/:id/report.pdf
func (h *Handler) SurveyReport(c *gin.Context) {
	h.sendRendered(c, "pdf", "application/pdf", results.RenderPDF)
}

// GET /api/surveys/:id/export.xlsx
func (h *Handler) SurveyExport(c *gin.Context) {
	h.sendRendered(c, "xlsx", mimeXLSX, results.RenderXLSX)
}

// sendRendered renders the owned survey into memory first so a rendering
// error still produces a JSON reply.
func (h *Handler) sendRendered(c *gin.Context, ext, contentType string, render func(io.Writer, api.Survey) error) {
	s := c.MustGet(middleware.CtxSurvey).(models.Survey)

	full, err := h.loadSurveyTree(c, s.ID)
	if err != nil {
		fail(c, err, "Cannot read survey")
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, full.Wire()); err != nil {
		internalError(c, "Cannot render report", err, "survey_id", s.ID, "format", ext)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="survey_%d.%s"`, s.ID, ext))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
