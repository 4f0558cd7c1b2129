package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/server/middleware"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.Auth("dev"))
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestCreateAnalysis(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleReply: `{"is_orange": true, "sweetness_grade": "High", "sweetness_score": 85}`,
	})
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, map[string][]byte{"orange.png": pngBytes})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload RecordResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.AnalysisID == "" {
		t.Fatalf("expected analysis id")
	}
	if payload.ImageCount != 1 || len(payload.Results) != 1 {
		t.Fatalf("unexpected payload shape: %+v", payload)
	}
	if payload.Results[0].Rank == nil || *payload.Results[0].Rank != 1 {
		t.Fatalf("expected rank 1, got %v", payload.Results[0].Rank)
	}
}

func largePNG(size int) []byte {
	data := make([]byte, size)
	copy(data, pngBytes)
	return data
}

func TestCreateAnalysisAcceptsFullSizeImages(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		batchReply: `[
			{"image_index": 1, "rank": 1, "is_orange": true, "sweetness_score": 90},
			{"image_index": 2, "rank": 2, "is_orange": true, "sweetness_score": 80},
			{"image_index": 3, "rank": 3, "is_orange": true, "sweetness_score": 70},
			{"image_index": 4, "rank": 4, "is_orange": true, "sweetness_score": 60}
		]`,
	})
	router := newTestRouter(svc)

	files := map[string][]byte{}
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png"} {
		files[name] = largePNG(9 << 20)
	}
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload RecordResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ImageCount != 4 || len(payload.Results) != 4 {
		t.Fatalf("unexpected payload shape: %+v", payload)
	}
}

func TestCreateAnalysisRejectsOversizedBody(t *testing.T) {
	svc, _ := newTestService(&stubVision{})
	router := newTestRouter(svc)

	files := map[string][]byte{}
	for _, name := range []string{"a.png", "b.png", "c.png", "d.png", "e.png", "f.png"} {
		files[name] = largePNG(9 << 20)
	}
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("request body too large")) {
		t.Fatalf("expected explicit size error, got %s", resp.Body.String())
	}
}

func TestCreateAnalysisRequiresImages(t *testing.T) {
	svc, _ := newTestService(&stubVision{})
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateAnalysisRejectsNonImage(t *testing.T) {
	svc, _ := newTestService(&stubVision{})
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, map[string][]byte{"notes.txt": []byte("not an image at all")})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateAnalysisLimitReached(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleReply: `{"is_orange": true}`,
	})
	if _, err := svc.Usage.Consume(context.Background(), "guest:u1", 30); err != nil {
		t.Fatalf("prime usage: %v", err)
	}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, map[string][]byte{"orange.png": pngBytes})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestGetAnalysisOwnership(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleReply: `{"is_orange": true}`,
	})
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, map[string][]byte{"orange.png": pngBytes})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Guest-Id", "owner")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.Code)
	}
	var created RecordResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Owner sees the record.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+created.AnalysisID, nil)
	req.Header.Set("X-Guest-Id", "owner")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", resp.Code)
	}

	// Another guest gets a 404, not a 403, to avoid leaking existence.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+created.AnalysisID, nil)
	req.Header.Set("X-Guest-Id", "stranger")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("stranger get: expected 404, got %d", resp.Code)
	}
}

func TestListAnalyses(t *testing.T) {
	svc, _ := newTestService(&stubVision{
		singleReply: `{"is_orange": true}`,
	})
	router := newTestRouter(svc)

	for i := 0; i < 2; i++ {
		body, contentType := multipartBody(t, map[string][]byte{"orange.png": pngBytes})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-Guest-Id", "u1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("create %d: expected 201, got %d", i, resp.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload struct {
		Analyses []RecordResponse `json:"analyses"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(payload.Analyses))
	}
}

func TestCreateFromS3(t *testing.T) {
	svc, store := newTestService(&stubVision{
		singleReply: `{"is_orange": true, "sweetness_score": 60}`,
	})
	store.objects["images/u1/batch/orange.png"] = pngBytes
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"images": [{"s3Key": "images/u1/batch/orange.png", "name": "orange.png"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/from-s3", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreateFromS3RequiresKey(t *testing.T) {
	svc, _ := newTestService(&stubVision{})
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"images": [{"name": "orange.png"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/from-s3", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "u1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
