package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/huynhduongtien171003/amis-demo/constants"
	"github.com/huynhduongtien171003/amis-demo/internal/common"
)

type exportRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=excel json"`
}

// handleExportAMIS renders a completed job into an AMIS file. Invoices
// default to the Excel workbook; orders only support JSON.
func (s *Service) handleExportAMIS(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
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
	if job.Status != constants.JobStatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "job is not completed"})
		return
	}

	var path string
	switch {
	case job.Invoice != nil && req.Format == "json":
		path, err = s.exporter.ExportInvoiceJSON(job.Invoice, job.ID)
	case job.Invoice != nil:
		path, err = s.exporter.ExportInvoiceXLSX(job.Invoice, job.ID)
	case job.Order != nil:
		path, err = s.exporter.ExportOrderJSON(job.Order, job.ID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "job has no exportable data"})
		return
	}
	if err != nil {
		s.logger.Error("server.export.failed", "job_id", job.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "export failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"job_id":    job.ID,
		"file_path": path,
		"filename":  filepath.Base(path),
	})
}

// handleDownload serves a previously exported file from the output
// directory. The filename is flattened to its base to keep requests inside
// the directory.
func (s *Service) handleDownload(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	path := filepath.Join(s.cfg.Storage.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "file not found"})
		return
	}
	c.FileAttachment(path, name)
}
