package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"restroom-cleanliness-api/config"
	"restroom-cleanliness-api/scoring"

	"github.com/pkg/errors"
)

// Detector runs object detection on one image file.
type Detector interface {
	Detect(ctx context.Context, imagePath string) ([]scoring.Detection, error)
}

// HTTPDetector calls an inference sidecar that hosts the detection model.
// The sidecar accepts the image as multipart field "file" and answers with
// {"detections":[{"class_id":0,"confidence":0.9}]}. class_id may be sent as
// an integral float such as 9.0; fractional ids are rejected.
type HTTPDetector struct {
	url       string
	healthURL string
	client    *http.Client
}

func NewHTTPDetector(cfg config.DetectorConfig) *HTTPDetector {
	return &HTTPDetector{
		url:       cfg.URL,
		healthURL: cfg.HealthURL,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type inferenceResponse struct {
	Detections []wireDetection `json:"detections"`
}

type wireDetection struct {
	ClassID    float64 `json:"class_id"`
	Confidence float64 `json:"confidence"`
}

func (r inferenceResponse) detections() ([]scoring.Detection, error) {
	out := make([]scoring.Detection, 0, len(r.Detections))
	for i, w := range r.Detections {
		if w.ClassID != math.Trunc(w.ClassID) || math.Abs(w.ClassID) > math.MaxInt32 {
			return nil, errors.Errorf("detection %d: class_id %v is not an integer", i, w.ClassID)
		}
		out = append(out, scoring.Detection{ClassID: int(w.ClassID), Confidence: w.Confidence})
	}
	return out, nil
}

func (d *HTTPDetector) Detect(ctx context.Context, imagePath string) ([]scoring.Detection, error) {
	start := time.Now()
	defer func() {
		detectorDuration.Observe(time.Since(start).Seconds())
	}()

	f, err := os.Open(imagePath)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, errors.Wrap(err, "copy image data")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	detections, err := result.detections()
	if err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return detections, nil
}

// CheckHealth reports whether the inference sidecar answers its health URL.
func (d *HTTPDetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.healthURL, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("detector unhealthy: %d", resp.StatusCode)
	}
	return nil
}
