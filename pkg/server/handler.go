package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quantrisk/riskscan/pkg/batch"
	"github.com/quantrisk/riskscan/pkg/report"
	"github.com/quantrisk/riskscan/pkg/sim"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/risks", h.submitBatch)
		api.GET("/risks/:id", h.getJob)

		api.POST("/simulate", h.simulate)

		api.POST("/reports/csv", h.exportCSV)
		api.POST("/reports/pdf", h.exportPDF)
	}
}

type submitRequest struct {
	Data []batch.RiskJob `json:"data"`
}

// submitBatch accepts either a JSON body {"data": [...]} or a multipart CSV
// upload (form field "file") and returns the job id immediately; research
// runs asynchronously.
func (h *Handler) submitBatch(c *gin.Context) {
	var jobs []batch.RiskJob

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file part"})
			return
		}
		defer file.Close()

		jobs, err = batch.ParseRiskCSV(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		jobs = req.Data
	}

	jobID, err := h.Service.SubmitBatch(c.Request.Context(), jobs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": batch.StatusPending})
}

// getJob reports job status; results are included only on SUCCESS, the
// failure detail only on FAILURE.
func (h *Handler) getJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.Service.GetJob(c.Request.Context(), id)
	if errors.Is(err, batch.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"job_id": job.ID, "status": job.Status}
	switch job.Status {
	case batch.StatusSuccess:
		resp["results"] = job.Results
	case batch.StatusFailure:
		resp["error"] = job.Error
	}
	c.JSON(http.StatusOK, resp)
}

// simulate runs the Monte Carlo engine. A JSON body carries one simulation;
// a multipart CSV upload carries variable rows grouped by scenario, each
// group simulated separately.
func (h *Handler) simulate(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file part"})
			return
		}
		defer file.Close()

		scenarios, err := sim.ParseScenarioCSV(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to process CSV: " + err.Error()})
			return
		}
		results, err := sim.RunScenarios(scenarios, 0)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, results)
		return
	}

	var req sim.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := sim.Run(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type exportRequest struct {
	Data []batch.RiskResult `json:"data"`
}

func (h *Handler) exportCSV(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
		return
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, req.Data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="generated_scenarios.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) exportPDF(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
		return
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, req.Data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="risk_scenarios.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
