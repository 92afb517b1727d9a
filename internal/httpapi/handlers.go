// Package httpapi serves the worker's health, metrics and replay endpoints.
package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/metrics"
	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/queue"
)

// maxReplayBody bounds the size of a replayed notification document.
const maxReplayBody = 1 << 20

type IngestHandler struct {
	pipeline queue.Handler
}

func NewIngestHandler(pipeline queue.Handler) *IngestHandler {
	return &IngestHandler{pipeline: pipeline}
}

type itemResult struct {
	Bucket        string       `json:"bucket"`
	Key           string       `json:"key"`
	ResumeID      string       `json:"resume_id,omitempty"`
	CandidateName string       `json:"candidate_name,omitempty"`
	DerivedKey    string       `json:"derived_key,omitempty"`
	Stage         ingest.Stage `json:"stage,omitempty"`
	Error         string       `json:"error,omitempty"`
}

type replayResponse struct {
	ingest.ResponseBody
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []itemResult `json:"results"`
}

// Replay runs the pipeline over an S3 event, a notification or a list of
// notifications posted in the body. Per-document failures are reported in
// the results, not as an HTTP error.
func (h *IngestHandler) Replay(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxReplayBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body: " + err.Error()})
		return
	}
	notifications, err := queue.DecodeNotifications(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification: " + err.Error()})
		return
	}
	report := h.pipeline.Handle(c.Request.Context(), notifications)
	resp := replayResponse{
		ResponseBody: report.Response().Body,
		Succeeded:    report.Succeeded(),
		Failed:       report.Failed(),
		Results:      make([]itemResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		item := itemResult{Bucket: res.Bucket, Key: res.Key}
		if res.Record != nil {
			item.ResumeID = res.Record.ResumeID
			item.CandidateName = res.Record.CandidateName
			item.DerivedKey = res.Record.DerivedKey
		}
		if res.Err != nil {
			item.Stage = ingest.StageOf(res.Err)
			item.Error = res.Err.Error()
		}
		resp.Results = append(resp.Results, item)
	}
	c.JSON(http.StatusOK, resp)
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics writes the ingestion counters as "name value" lines.
func Metrics(c *gin.Context) {
	c.String(http.StatusOK, metrics.FormatMetrics())
}
