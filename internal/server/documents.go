package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/common"
	"github.com/huynhduongtien171003/amis-demo/internal/llm"
	"github.com/huynhduongtien171003/amis-demo/internal/repository"
)

type documentResponse struct {
	Success        bool                `json:"success"`
	JobID          string              `json:"job_id"`
	Status         constants.JobStatus `json:"status"`
	Data           any                 `json:"data,omitempty"`
	ErrorMessage   string              `json:"error_message,omitempty"`
	ProcessingTime float64             `json:"processing_time,omitempty"`
}

type invoiceTextRequest struct {
	InvoiceText       string `form:"invoice_text" binding:"required"`
	AdditionalContext string `form:"additional_context"`
}

type orderTextRequest struct {
	MessageText       string `form:"message_text" binding:"required"`
	AdditionalContext string `form:"additional_context"`
}

type updateRequest struct {
	UpdatedData map[string]any `json:"updated_data" binding:"required"`
	Notes       string         `json:"notes"`
}

func (s *Service) handleInvoiceUpload(c *gin.Context) { s.handleUpload(c, constants.KindInvoice) }
func (s *Service) handleOrderUpload(c *gin.Context)   { s.handleUpload(c, constants.KindOrder) }

func (s *Service) handleUpload(c *gin.Context, kind constants.DocumentKind) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	ext := constants.NormalizeExt(filepath.Ext(file.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("unsupported file extension %q", ext),
		})
		return
	}
	if file.Size > s.cfg.Storage.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": fmt.Sprintf("file too large, max %d MB", s.cfg.Storage.MaxFileSize/1024/1024),
		})
		return
	}

	jobID := uuid.New().String()
	dst := filepath.Join(s.cfg.Storage.UploadDir, jobID+"."+ext)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.logger.Error("server.upload.save_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "save upload failed"})
		return
	}

	job := s.process(c, kind, &repository.Job{
		ID:        jobID,
		Kind:      kind,
		InputType: constants.InputTypeFile,
		Filename:  file.Filename,
		FilePath:  dst,
	}, llm.ExtractRequest{
		Kind:              kind,
		ImagePath:         dst,
		AdditionalContext: c.PostForm("additional_context"),
	})
	respondJob(c, job)
}

func (s *Service) handleInvoiceText(c *gin.Context) {
	var req invoiceTextRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	job := s.process(c, constants.KindInvoice, &repository.Job{
		ID:        uuid.New().String(),
		Kind:      constants.KindInvoice,
		InputType: constants.InputTypeText,
	}, llm.ExtractRequest{
		Kind:              constants.KindInvoice,
		Text:              req.InvoiceText,
		AdditionalContext: req.AdditionalContext,
	})
	respondJob(c, job)
}

func (s *Service) handleOrderText(c *gin.Context) {
	var req orderTextRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	job := s.process(c, constants.KindOrder, &repository.Job{
		ID:        uuid.New().String(),
		Kind:      constants.KindOrder,
		InputType: constants.InputTypeText,
	}, llm.ExtractRequest{
		Kind:              constants.KindOrder,
		Text:              req.MessageText,
		AdditionalContext: req.AdditionalContext,
	})
	respondJob(c, job)
}

// process runs extraction and the normalization pipeline, records the job in
// its terminal state, and returns it. Failures are reported on the job, not
// as HTTP errors — the submission itself succeeded.
func (s *Service) process(c *gin.Context, kind constants.DocumentKind, job *repository.Job, req llm.ExtractRequest) *repository.Job {
	start := time.Now()
	job.Status = constants.JobStatusProcessing
	job.CreatedAt = start.UTC()
	job.UpdatedAt = job.CreatedAt

	raw, err := s.extractor.Extract(c.Request.Context(), req)
	if err != nil {
		s.fail(c, job, "extraction failed: "+err.Error())
		return job
	}
	job.RawResponse = raw

	elapsed := time.Since(start)
	switch kind {
	case constants.KindOrder:
		ord, err := s.engine.ProcessOrderText(raw, elapsed)
		if err != nil {
			s.fail(c, job, "no JSON payload in model response")
			return job
		}
		job.Order = ord
	default:
		inv, err := s.engine.ProcessInvoiceText(raw, elapsed)
		if err != nil {
			s.fail(c, job, "no JSON payload in model response")
			return job
		}
		job.Invoice = inv
	}

	job.Status = constants.JobStatusCompleted
	job.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(c.Request.Context(), job); err != nil {
		s.logger.Error("server.job.persist_failed", "job_id", job.ID, "error", err)
	}
	return job
}

func (s *Service) fail(c *gin.Context, job *repository.Job, msg string) {
	job.Status = constants.JobStatusFailed
	job.ErrorMessage = msg
	job.UpdatedAt = time.Now().UTC()
	s.logger.Warn("server.job.failed", "job_id", job.ID, "kind", job.Kind, "error", msg)
	if err := s.store.Put(c.Request.Context(), job); err != nil {
		s.logger.Error("server.job.persist_failed", "job_id", job.ID, "error", err)
	}
}

func respondJob(c *gin.Context, job *repository.Job) {
	resp := documentResponse{
		Success: job.Status == constants.JobStatusCompleted,
		JobID:   job.ID,
		Status:  job.Status,
	}
	switch {
	case job.Invoice != nil:
		resp.Data = job.Invoice
		resp.ProcessingTime = job.Invoice.ProcessingTime
	case job.Order != nil:
		resp.Data = job.Order
		resp.ProcessingTime = job.Order.ProcessingTime
	default:
		resp.ErrorMessage = job.ErrorMessage
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) handleResult(c *gin.Context) {
	job, err := s.store.Get(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	respondJob(c, job)
}

func (s *Service) handleInvoiceUpdate(c *gin.Context) { s.handleUpdate(c, constants.KindInvoice) }
func (s *Service) handleOrderUpdate(c *gin.Context)   { s.handleUpdate(c, constants.KindOrder) }

// handleUpdate re-runs normalization and reconciliation over a manually
// edited field map, so hand edits face the same checks as model output.
func (s *Service) handleUpdate(c *gin.Context, kind constants.DocumentKind) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	job, err := s.store.Get(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if job.Kind != kind {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "job kind mismatch"})
		return
	}

	switch kind {
	case constants.KindOrder:
		job.Order = s.engine.ProcessOrderMap(req.UpdatedData, 0)
	default:
		job.Invoice = s.engine.ProcessInvoiceMap(req.UpdatedData, 0)
	}
	job.Status = constants.JobStatusCompleted
	job.ErrorMessage = ""
	job.UpdatedAt = time.Now().UTC()

	if err := s.store.Put(c.Request.Context(), job); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	s.logger.Info("server.job.updated", "job_id", job.ID, "kind", job.Kind, "notes", req.Notes)
	respondJob(c, job)
}

func (s *Service) handleInvoiceJobs(c *gin.Context) { s.handleJobs(c, constants.KindInvoice) }
func (s *Service) handleOrderJobs(c *gin.Context)   { s.handleJobs(c, constants.KindOrder) }

func (s *Service) handleJobs(c *gin.Context, kind constants.DocumentKind) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	jobs, err := s.store.List(c.Request.Context(), kind, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(jobs), "jobs": jobs})
}

func (s *Service) handleDelete(c *gin.Context) {
	id := c.Param("job_id")
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job_id": id})
}
