package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/server/middleware"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/server/respond"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/usage"
)

// Room for multipart boundaries and headers on top of the image payload.
const uploadOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.create)
	rg.POST("/analyses/from-s3", h.createFromS3)
	rg.GET("/analyses", h.list)
	rg.GET("/analyses/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	maxBody := int64(h.Svc.maxImages())*maxImageBytes + uploadOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "request body too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}
	fileHeaders := form.File["images"]
	if len(fileHeaders) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one image is required", nil)
		return
	}

	uploads := make([]UploadImage, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		file, err := fh.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read uploaded image", nil)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read uploaded image", nil)
			return
		}
		uploads = append(uploads, UploadImage{Name: fh.Filename, Data: data})
	}

	record, err := h.Svc.Analyze(c.Request.Context(), userID, uploads)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	respond.Created(c, toResponse(record))
}

type createFromS3Request struct {
	Images []struct {
		S3Key string `json:"s3Key"`
		Name  string `json:"name"`
	} `json:"images"`
}

func (h *Handler) createFromS3(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createFromS3Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	stored := make([]StoredImage, 0, len(req.Images))
	for _, img := range req.Images {
		key := strings.TrimSpace(img.S3Key)
		if key == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "s3Key is required for every image", nil)
			return
		}
		stored = append(stored, StoredImage{Key: key, Name: strings.TrimSpace(img.Name)})
	}

	record, err := h.Svc.AnalyzeStored(c.Request.Context(), userID, stored)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	respond.Created(c, toResponse(record))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be between 1 and 100", nil)
			return
		}
		limit = parsed
	}

	records, err := h.Svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	responses := make([]RecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toResponse(record))
	}
	respond.JSON(c, http.StatusOK, gin.H{"analyses": responses})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	recordID := c.Param("id")
	if recordID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	record, err := h.Svc.Get(c.Request.Context(), userID, recordID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(record))
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, usage.ErrLimitReached):
		respond.Error(c, http.StatusForbidden, "limit_reached", "analysis limit reached for the current period", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run analysis", nil)
	}
}
