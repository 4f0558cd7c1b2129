package analyses

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/analyzer"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/metrics"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/storage/object"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/telemetry"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/usage"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/vision"
)

// UploadImage is one image submitted for analysis.
type UploadImage struct {
	Name string
	Data []byte
}

// StoredImage references an image already present in object storage.
type StoredImage struct {
	Key  string
	Name string
}

const maxImageBytes = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Service contains business logic for analyses.
type Service struct {
	Repo            Repo
	Usage           *usage.Service
	Store           object.ObjectStore
	Analyzer        *analyzer.Analyzer
	Provider        string
	Model           string
	AnalysisVersion string
	MaxImages       int
}

// Analyze validates and stores the uploaded images, runs the analysis, and
// persists the outcome. Per-image failures surface inside the record, not as
// an error.
func (s *Service) Analyze(ctx context.Context, userID string, uploads []UploadImage) (Record, error) {
	if err := s.validate(uploads); err != nil {
		return Record{}, err
	}

	if _, err := s.Usage.Consume(ctx, userID, len(uploads)); err != nil {
		return Record{}, err
	}

	images := make([]analyzer.Image, 0, len(uploads))
	keys := make(map[string]string, len(uploads))
	for _, up := range uploads {
		storageKey, _, _, err := s.Store.Save(ctx, userID, up.Name, bytes.NewReader(up.Data))
		if err != nil {
			return Record{}, fmt.Errorf("store image %q: %w", up.Name, err)
		}
		keys[up.Name] = storageKey
		images = append(images, analyzer.Image{Name: up.Name, Data: up.Data})
	}

	return s.run(ctx, userID, images, keys)
}

// AnalyzeStored runs the analysis on images already present in object
// storage, fetched by key.
func (s *Service) AnalyzeStored(ctx context.Context, userID string, stored []StoredImage) (Record, error) {
	if len(stored) == 0 {
		return Record{}, fmt.Errorf("%w: at least one image is required", ErrInvalidInput)
	}
	if len(stored) > s.maxImages() {
		return Record{}, fmt.Errorf("%w: at most %d images per analysis", ErrInvalidInput, s.maxImages())
	}

	if _, err := s.Usage.Consume(ctx, userID, len(stored)); err != nil {
		return Record{}, err
	}

	images := make([]analyzer.Image, 0, len(stored))
	keys := make(map[string]string, len(stored))
	for _, ref := range stored {
		data, err := s.fetch(ctx, ref.Key)
		if err != nil {
			return Record{}, fmt.Errorf("%w: unable to read object %q", ErrInvalidInput, ref.Key)
		}
		if !allowedImageTypes[http.DetectContentType(data)] {
			return Record{}, fmt.Errorf("%w: object %q is not a supported image", ErrInvalidInput, ref.Key)
		}
		name := ref.Name
		if name == "" {
			name = ref.Key
		}
		keys[name] = ref.Key
		images = append(images, analyzer.Image{Name: name, Data: data})
	}

	return s.run(ctx, userID, images, keys)
}

// Get returns a record if it belongs to the user.
func (s *Service) Get(ctx context.Context, userID, recordID string) (Record, error) {
	record, err := s.Repo.GetByID(ctx, recordID)
	if err != nil {
		return Record{}, err
	}
	if record.UserID != userID {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	return s.Repo.ListByUser(ctx, userID, limit)
}

func (s *Service) run(ctx context.Context, userID string, images []analyzer.Image, keys map[string]string) (Record, error) {
	metrics.IncAnalysisStarted()
	started := time.Now()

	batch := s.Analyzer.AnalyzeMultiple(ctx, images)

	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))

	record := Record{
		ID:              uuid.NewString(),
		UserID:          userID,
		Method:          string(batch.Method),
		Provider:        s.Provider,
		Model:           s.Model,
		AnalysisVersion: s.AnalysisVersion,
		ImageCount:      len(images),
		Results:         make([]ImageResult, 0, len(batch.Items)),
		CreatedAt:       time.Now().UTC(),
	}

	failed := 0
	for _, item := range batch.Items {
		snapshot := snapshotResult(item)
		snapshot.StorageKey = keys[item.Name]
		if snapshot.ErrorMessage != nil {
			failed++
		}
		record.Results = append(record.Results, snapshot)
	}

	if failed == len(record.Results) && failed > 0 {
		metrics.IncAnalysisFailed()
	} else {
		metrics.IncAnalysisCompleted()
	}

	if err := s.Repo.Create(ctx, record); err != nil {
		return Record{}, err
	}

	telemetry.Info("analysis.recorded", map[string]any{
		"analysis_id": record.ID,
		"user_id":     userID,
		"method":      record.Method,
		"image_count": record.ImageCount,
		"failed":      failed,
	})
	return record, nil
}

func snapshotResult(item analyzer.Item) ImageResult {
	res := item.Result
	snapshot := ImageResult{
		Name:             item.Name,
		IsOrange:         res.IsOrange,
		SweetnessGrade:   res.SweetnessGrade,
		BrixMin:          res.BrixMin,
		BrixMax:          res.BrixMax,
		BrixRange:        res.BrixRange(),
		SweetnessScore:   res.SweetnessScore,
		ConfidenceScore:  res.ConfidenceScore,
		Rank:             res.Rank,
		AnalysisReason:   res.AnalysisReason,
		ColorAnalysis:    res.ColorAnalysis,
		SurfaceAnalysis:  res.SurfaceAnalysis,
		RipenessAnalysis: res.RipenessAnalysis,
		ErrorMessage:     res.ErrorMessage,
	}
	if cause, ok := analyzer.CapabilityFailureCause(res); ok {
		code, friendly := vision.Classify(cause)
		snapshot.ErrorCode = string(code)
		snapshot.ErrorMessage = &friendly
	}
	return snapshot
}

func (s *Service) validate(uploads []UploadImage) error {
	if len(uploads) == 0 {
		return fmt.Errorf("%w: at least one image is required", ErrInvalidInput)
	}
	if len(uploads) > s.maxImages() {
		return fmt.Errorf("%w: at most %d images per analysis", ErrInvalidInput, s.maxImages())
	}
	for _, up := range uploads {
		if up.Name == "" {
			return fmt.Errorf("%w: image name is required", ErrInvalidInput)
		}
		if len(up.Data) == 0 {
			return fmt.Errorf("%w: image %q is empty", ErrInvalidInput, up.Name)
		}
		if len(up.Data) > maxImageBytes {
			return fmt.Errorf("%w: image %q exceeds the 10MB limit", ErrInvalidInput, up.Name)
		}
		if !allowedImageTypes[http.DetectContentType(up.Data)] {
			return fmt.Errorf("%w: image %q must be JPEG, PNG or WebP", ErrInvalidInput, up.Name)
		}
	}
	return nil
}

func (s *Service) maxImages() int {
	if s.MaxImages > 0 {
		return s.MaxImages
	}
	return 5
}

func (s *Service) fetch(ctx context.Context, key string) ([]byte, error) {
	reader, err := s.Store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
