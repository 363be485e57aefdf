package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"household-budget-backend/internal/apperr"
	"household-budget-backend/internal/logger"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/services/imports"
)

// maxUploadSize caps a statement file read into memory.
const maxUploadSize = 10 << 20

type ImportHandler struct {
	service *imports.Service
}

func NewImportHandler(s *imports.Service) *ImportHandler {
	return &ImportHandler{service: s}
}

// Create ingests rows that were already parsed on the client.
func (h *ImportHandler) Create(c *gin.Context) {
	var p struct {
		FileName   string              `json:"file_name"`
		SourceType models.ImportSource `json:"source_type"`
		FileHash   string              `json:"file_hash"`
		Rows       []imports.Row       `json:"rows"`
	}
	if err := c.ShouldBindJSON(&p); err != nil || p.FileName == "" {
		badPayload(c)
		return
	}
	ctx := c.Request.Context()

	hash := p.FileHash
	if hash == "" {
		raw, err := json.Marshal(p.Rows)
		if err != nil {
			badPayload(c)
			return
		}
		hash = imports.FileHash(raw)
	}

	batch, err := h.service.RegisterHash(ctx, p.FileName, p.SourceType, hash)
	if err != nil {
		h.registerFailed(c, batch, err)
		return
	}
	res, err := h.service.Ingest(ctx, batch, p.Rows)
	if err != nil {
		respondError(c, "import transactions", err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Upload accepts a CSV statement and processes it in the background.
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	if len(content) > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	source := models.ImportSource(c.DefaultPostForm("source_type", string(models.SourceOFX)))
	batch, err := h.service.Register(c.Request.Context(), header.Filename, source, content)
	if err != nil {
		h.registerFailed(c, batch, err)
		return
	}

	// keep user and logger, drop the request deadline
	go h.process(context.WithoutCancel(c.Request.Context()), batch, content)

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID.String(),
		"status":   models.ImportProcessing,
	})
}

func (h *ImportHandler) process(ctx context.Context, batch *models.ImportBatch, content []byte) {
	log := logger.FromContext(ctx).With().Str("batch_id", batch.ID.String()).Logger()
	res, err := h.service.ImportCSV(ctx, batch, content)
	if err != nil {
		log.Error().Err(err).Msg("background import failed")
		return
	}
	log.Info().Int("inserted", res.Inserted).Int("skipped", res.Skipped).Msg("background import finished")
}

func (h *ImportHandler) registerFailed(c *gin.Context, batch *models.ImportBatch, err error) {
	if errors.Is(err, apperr.ErrDuplicateImport) && batch != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":    "file already imported",
			"batch_id": batch.ID.String(),
			"status":   batch.Status,
		})
		return
	}
	respondError(c, "register import", err)
}

func (h *ImportHandler) GetBatchProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		respondError(c, "load import batch", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch_id":          batch.ID.String(),
		"processed_count":   batch.ProcessedCount,
		"transaction_count": batch.TransactionCount,
		"status":            batch.Status,
		"error_message":     batch.ErrorMessage,
	})
}
