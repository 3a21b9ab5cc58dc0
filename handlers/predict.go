package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"restroom-cleanliness-api/models"
	"restroom-cleanliness-api/scoring"
	"restroom-cleanliness-api/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	uploadField      = "images"
	defaultImageExt  = ".jpg"
	noImagesMessage  = "No images uploaded. Please upload using the 'images' field (multipart/form-data)."
	detectorFailed   = "detector failed"
	saveFailed       = "failed to save upload"
	eventPublishWait = 2 * time.Second
)

type detectorError struct {
	err error
}

func (e *detectorError) Error() string { return detectorFailed + ": " + e.err.Error() }

func (e *detectorError) Unwrap() error { return e.err }

type PredictHandler struct {
	detector services.Detector
	table    *scoring.ClassTable
	filter   scoring.Postprocessor
	events   *services.Broadcaster
	logger   *zap.Logger
	now      func() time.Time
}

func NewPredictHandler(
	detector services.Detector,
	table *scoring.ClassTable,
	minConfidence float64,
	events *services.Broadcaster,
	logger *zap.Logger,
) *PredictHandler {
	return &PredictHandler{
		detector: detector,
		table:    table,
		filter:   scoring.NewConfidenceFilter(minConfidence),
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Predict scores every file uploaded under the "images" field, in upload
// order. Processing stops at the first image that fails.
func (h *PredictHandler) Predict(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File[uploadField]) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  models.StatusError,
			Message: noImagesMessage,
		})
		return
	}

	files := form.File[uploadField]
	responses := make([]models.ScoreResponse, 0, len(files))

	for _, fh := range files {
		resp, err := h.scoreUpload(c.Request.Context(), fh)
		if err != nil {
			status, message := http.StatusInternalServerError, saveFailed
			var de *detectorError
			if errors.As(err, &de) {
				status, message = http.StatusBadGateway, detectorFailed
			}
			h.logger.Error("image scoring failed", zap.String("filename", fh.Filename), zap.Error(err))
			_ = c.Error(err)
			c.JSON(status, models.ErrorResponse{
				Status:   models.StatusError,
				Message:  message,
				Filename: fh.Filename,
			})
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, responses)
}

func (h *PredictHandler) scoreUpload(ctx context.Context, fh *multipart.FileHeader) (models.ScoreResponse, error) {
	path, err := spoolUpload(fh)
	if err != nil {
		return models.ScoreResponse{}, errors.Wrap(err, saveFailed)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("temp file cleanup failed", zap.String("path", path), zap.Error(err))
		}
	}()

	detections, err := h.detector.Detect(ctx, path)
	if err != nil {
		services.RecordDetectorFailure()
		return models.ScoreResponse{}, &detectorError{err: err}
	}

	result := scoring.Score(h.table, h.filter(detections))
	services.RecordScore(h.table, result)

	ts := h.now()
	resp := models.NewScoreResponse(fh.Filename, result, ts)

	h.logger.Debug("image scored",
		zap.String("filename", fh.Filename),
		zap.Int("detections", len(detections)),
		zap.Float64("score", resp.Score),
		zap.Float64("raw_score", resp.Metadata.RawScore))

	if h.events != nil && h.events.Len() > 0 {
		pubCtx, cancel := context.WithTimeout(ctx, eventPublishWait)
		h.events.Publish(pubCtx, models.NewScoreEvent(resp, ts))
		cancel()
	}

	return resp, nil
}

// spoolUpload copies an upload to a temp file that keeps the upload's
// extension. The caller removes the file.
func spoolUpload(fh *multipart.FileHeader) (string, error) {
	ext := filepath.Ext(fh.Filename)
	if ext == "" {
		ext = defaultImageExt
	}

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "cleanliness-*"+ext)
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", errors.Wrap(err, "write temp file")
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", errors.Wrap(err, "close temp file")
	}
	return dst.Name(), nil
}
