package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/analyzer"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/usage"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/vision"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type fakeStore struct {
	objects map[string][]byte
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	s.saves++
	key := fmt.Sprintf("%s/%d-%s", userID, s.saves, fileName)
	s.objects[key] = data
	return key, int64(len(data)), "image/png", nil
}

func (s *fakeStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type stubVision struct {
	singleReply string
	singleErr   error
	batchReply  string
	batchErr    error
}

func (s *stubVision) AnalyzeImage(ctx context.Context, image []byte, prompt string) (string, error) {
	return s.singleReply, s.singleErr
}

func (s *stubVision) AnalyzeImages(ctx context.Context, images [][]byte, prompt string) (string, error) {
	return s.batchReply, s.batchErr
}

func newTestService(client vision.Client) (*Service, *fakeStore) {
	store := newFakeStore()
	svc := &Service{
		Repo:            NewMemoryRepo(),
		Usage:           usage.NewService(),
		Store:           store,
		Analyzer:        analyzer.New(client),
		Provider:        "openai",
		Model:           "gpt-4o",
		AnalysisVersion: "gpt-4o:v1",
		MaxImages:       5,
	}
	return svc, store
}

func TestAnalyzeSingleImage(t *testing.T) {
	svc, store := newTestService(&stubVision{
		singleReply: `{"is_orange": true, "sweetness_grade": "High", "sweetness_score": 85, "brix_min": 12.5, "brix_max": 14}`,
	})

	record, err := svc.Analyze(context.Background(), "guest:u1", []UploadImage{
		{Name: "orange.png", Data: pngBytes},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if record.Method != string(analyzer.MethodIndividuallyRanked) {
		t.Fatalf("unexpected method: %s", record.Method)
	}
	if record.ImageCount != 1 || len(record.Results) != 1 {
		t.Fatalf("unexpected result shape: count=%d results=%d", record.ImageCount, len(record.Results))
	}
	res := record.Results[0]
	if res.Rank == nil || *res.Rank != 1 {
		t.Fatalf("expected rank 1, got %v", res.Rank)
	}
	if res.BrixRange == nil || *res.BrixRange != "12.5~14" {
		t.Fatalf("unexpected brix range: %v", res.BrixRange)
	}
	if res.StorageKey == "" {
		t.Fatalf("expected storage key recorded")
	}
	if store.saves != 1 {
		t.Fatalf("expected one stored object, got %d", store.saves)
	}

	stored, err := svc.Get(context.Background(), "guest:u1", record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.ID != record.ID {
		t.Fatalf("round-trip mismatch")
	}
}

func TestAnalyzeBatchCompared(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		batchReply: `[
			{"is_orange": true, "image_index": 2, "rank": 1, "sweetness_score": 90},
			{"is_orange": true, "image_index": 1, "rank": 2, "sweetness_score": 70}
		]`,
	})

	record, err := svc.Analyze(context.Background(), "guest:u1", []UploadImage{
		{Name: "a.png", Data: pngBytes},
		{Name: "b.png", Data: pngBytes},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if record.Method != string(analyzer.MethodBatchCompared) {
		t.Fatalf("unexpected method: %s", record.Method)
	}
	if record.Results[0].Name != "b.png" {
		t.Fatalf("expected rank 1 image first, got %s", record.Results[0].Name)
	}
}

func TestAnalyzeCapabilityFailureClassified(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleErr: errors.New("credit balance too low"),
	})

	record, err := svc.Analyze(context.Background(), "guest:u1", []UploadImage{
		{Name: "orange.png", Data: pngBytes},
	})
	if err != nil {
		t.Fatalf("provider failures must not fail the request: %v", err)
	}
	res := record.Results[0]
	if res.IsOrange {
		t.Fatalf("expected non-orange result on provider failure")
	}
	if res.ErrorCode != string(vision.FailureInsufficientCredit) {
		t.Fatalf("unexpected error code: %s", res.ErrorCode)
	}
	if res.ErrorMessage == nil || !strings.Contains(*res.ErrorMessage, "credits") {
		t.Fatalf("unexpected error message: %v", res.ErrorMessage)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	svc, _ := newTestService(&stubVision{})

	if _, err := svc.Analyze(context.Background(), "guest:u1", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty uploads, got %v", err)
	}

	uploads := make([]UploadImage, 6)
	for i := range uploads {
		uploads[i] = UploadImage{Name: fmt.Sprintf("img%d.png", i), Data: pngBytes}
	}
	if _, err := svc.Analyze(context.Background(), "guest:u1", uploads); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for too many images, got %v", err)
	}

	if _, err := svc.Analyze(context.Background(), "guest:u1", []UploadImage{
		{Name: "notes.txt", Data: []byte("plain text, not an image")},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for non-image payload, got %v", err)
	}
}

func TestAnalyzeConsumesUsage(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleReply: `{"is_orange": true, "sweetness_score": 50}`,
	})

	ctx := context.Background()
	if _, err := svc.Analyze(ctx, "guest:u1", []UploadImage{{Name: "a.png", Data: pngBytes}}); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	u, err := svc.Usage.Get(ctx, "guest:u1")
	if err != nil {
		t.Fatalf("usage get: %v", err)
	}
	if u.Used != 1 {
		t.Fatalf("expected 1 unit consumed, got %d", u.Used)
	}
}

func TestAnalyzeLimitReached(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleReply: `{"is_orange": true}`,
	})

	ctx := context.Background()
	if _, err := svc.Usage.Consume(ctx, "guest:u1", 30); err != nil {
		t.Fatalf("prime usage: %v", err)
	}

	_, err := svc.Analyze(ctx, "guest:u1", []UploadImage{{Name: "a.png", Data: pngBytes}})
	if !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestAnalyzeStored(t *testing.T) {
	svc, store := newTestService(&stubVision{
		singleReply: `{"is_orange": true, "sweetness_score": 75}`,
	})
	store.objects["images/u1/batch/orange.png"] = pngBytes

	record, err := svc.AnalyzeStored(context.Background(), "guest:u1", []StoredImage{
		{Key: "images/u1/batch/orange.png", Name: "orange.png"},
	})
	if err != nil {
		t.Fatalf("analyze stored: %v", err)
	}
	if record.Results[0].StorageKey != "images/u1/batch/orange.png" {
		t.Fatalf("unexpected storage key: %s", record.Results[0].StorageKey)
	}
}

func TestAnalyzeStoredMissingObject(t *testing.T) {
	svc, _ := newTestService(&stubVision{})

	_, err := svc.AnalyzeStored(context.Background(), "guest:u1", []StoredImage{
		{Key: "images/u1/missing.png"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing object, got %v", err)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleReply: `{"is_orange": true}`,
	})

	ctx := context.Background()
	record, err := svc.Analyze(ctx, "guest:owner", []UploadImage{{Name: "a.png", Data: pngBytes}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if _, err := svc.Get(ctx, "guest:other", record.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
}
