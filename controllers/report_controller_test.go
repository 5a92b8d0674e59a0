package controllers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSurveyReportAndExport(t *testing.T) {
	e := newEnv(t)
	owner, token := e.user("owner")
	_, intruder := e.user("intruder")
	s := e.survey(owner.ID, true, []string{"Lunch?", "Pizza", "Salad"})
	require.NoError(t, e.db.Exec("UPDATE choice SET votes = 3 WHERE id = ?", s.Questions[0].Choices[0].ID).Error)

	w := e.do(http.MethodGet, fmt.Sprintf("/api/surveys/%d/report.pdf", s.ID), token, nil)
	expectStatus(t, w, http.StatusOK)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), fmt.Sprintf(`filename="survey_%d.pdf"`, s.ID))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = e.do(http.MethodGet, fmt.Sprintf("/api/surveys/%d/export.xlsx", s.ID), token, nil)
	expectStatus(t, w, http.StatusOK)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	assert.NotEmpty(t, rows)

	w = e.do(http.MethodGet, fmt.Sprintf("/api/surveys/%d/report.pdf", s.ID), intruder, nil)
	expectStatus(t, w, http.StatusNotFound)
}
