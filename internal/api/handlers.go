// Package api exposes the ingestion boundary and the operational views over
// HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	"github.com/Hosseinjeff/Wholesale-project/internal/database"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/export"
	"github.com/Hosseinjeff/Wholesale-project/internal/ingest"
	"github.com/Hosseinjeff/Wholesale-project/internal/lock"
	"github.com/Hosseinjeff/Wholesale-project/internal/pipeline"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// IngestService is the ingestion boundary.
type IngestService interface {
	Ingest(ctx context.Context, p ingest.Payload) (ingest.Outcome, error)
	Status(ctx context.Context) (ingest.StatusReport, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Replay(ctx context.Context, opts ingest.ReplayOptions) (ingest.ReplayReport, error)
}

// Extractor runs the pipeline without persisting anything.
type Extractor interface {
	Extract(ctx context.Context, msg domain.RawMessage) (pipeline.Result, error)
}

// Store is the read side used by the operational views.
type Store interface {
	GetMessage(ctx context.Context, id string) (*domain.RawMessage, error)
	ListMessages(ctx context.Context, filter database.MessageFilter) ([]domain.RawMessage, error)
	ListProducts(ctx context.Context, limit int) ([]domain.ProductRecord, error)
	AllProducts(ctx context.Context) ([]domain.ProductRecord, error)
	RecentLogs(ctx context.Context, limit int) ([]domain.LogEvent, error)
}

// Profiles exposes the current profile registry.
type Profiles interface {
	Registry() *profile.Registry
}

// Window exposes the degradation window.
type Window interface {
	Snapshot() quality.Snapshot
}

// Config holds handler settings.
type Config struct {
	Version string
	// MaxContentLength caps webhook content, in characters.
	MaxContentLength int
}

// Handler serves the HTTP API.
type Handler struct {
	ingest    IngestService
	extractor Extractor
	store     Store
	profiles  Profiles
	window    Window
	cfg       Config
	log       logger.Logger
	now       func() time.Time
}

// NewHandler creates a handler.
func NewHandler(
	svc IngestService,
	extractor Extractor,
	store Store,
	profiles Profiles,
	window Window,
	cfg Config,
	log logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		ingest:    svc,
		extractor: extractor,
		store:     store,
		profiles:  profiles,
		window:    window,
		cfg:       cfg,
		log:       log.With(logger.Component("api")),
		now:       time.Now,
	}
}

// Webhook handles POST /api/v1/webhook
func (h *Handler) Webhook(c *gin.Context) {
	var p ingest.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		h.log.Warn("Invalid webhook body", logger.Error(err))
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if h.cfg.MaxContentLength > 0 && utf8.RuneCountInString(p.Content) > h.cfg.MaxContentLength {
		respondError(c, http.StatusRequestEntityTooLarge,
			fmt.Errorf("content exceeds %d characters", h.cfg.MaxContentLength))
		return
	}

	out, err := h.ingest.Ingest(c.Request.Context(), p)
	if err != nil {
		h.respondIngestError(c, err)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Status:        out.Status,
		Message:       outcomeMessage(out),
		ProductsFound: out.ProductsFound,
		Channel:       out.Channel,
		ID:            out.MessageID,
		Inserted:      out.Inserted,
		Updated:       out.Updated,
		NeedsReview:   out.NeedsReview,
	})
}

func (h *Handler) respondIngestError(c *gin.Context, err error) {
	var verr *ingest.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, lock.ErrBusy):
		respondError(c, http.StatusServiceUnavailable, lock.ErrBusy)
	case errors.Is(err, ingest.ErrPaused):
		respondError(c, http.StatusServiceUnavailable, ingest.ErrPaused)
	default:
		h.log.Error("Ingestion failed", logger.Error(err))
		respondError(c, http.StatusInternalServerError, err)
	}
}

func outcomeMessage(out ingest.Outcome) string {
	switch out.Status {
	case ingest.StatusSuccess:
		return fmt.Sprintf("extracted %d products", out.ProductsFound)
	case ingest.StatusDuplicate:
		return "message already processed"
	case ingest.StatusNonProduct:
		return "message is not a product listing"
	default:
		return "no products found"
	}
}

// Status handles GET /api/v1/status
func (h *Handler) Status(c *gin.Context) {
	report, err := h.ingest.Status(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Pause handles POST /api/v1/ingestion/pause
func (h *Handler) Pause(c *gin.Context) {
	if err := h.ingest.Pause(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "paused": true})
}

// Resume handles POST /api/v1/ingestion/resume
func (h *Handler) Resume(c *gin.Context) {
	if err := h.ingest.Resume(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "paused": false})
}

// Logs handles GET /api/v1/logs
func (h *Handler) Logs(c *gin.Context) {
	limit, err := queryInt(c, "limit", database.DefaultLogLimit)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	limit = database.ClampLogLimit(limit)

	events, err := h.store.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, LogsResponse{Logs: events, Count: len(events), Limit: limit})
}

// Products handles GET /api/v1/products
func (h *Handler) Products(c *gin.Context) {
	limit, err := queryInt(c, "limit", database.DefaultProductLimit)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	products, err := h.store.ListProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, ProductsResponse{Products: products, Count: len(products)})
}

// Message handles GET /api/v1/messages/:id
func (h *Handler) Message(c *gin.Context) {
	msg, err := h.store.GetMessage(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		respondError(c, http.StatusNotFound, errors.New("message not found"))
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Extract handles POST /api/v1/extract. Nothing is stored.
func (h *Handler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	now := h.now().UTC()
	msg := domain.RawMessage{
		ID:              "test_" + strconv.FormatInt(now.UnixMilli(), 10),
		Channel:         req.Channel,
		ChannelUsername: req.ChannelUsername,
		Text:            req.Content,
		ReceivedAt:      now,
		ImportedAt:      now,
	}
	if msg.ChannelIdentifier() == "" {
		msg.Channel = "test"
	}

	res, err := h.extractor.Extract(c.Request.Context(), msg)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Profiles handles GET /api/v1/profiles
func (h *Handler) Profiles(c *gin.Context) {
	all := h.profiles.Registry().Profiles()
	out := make([]ProfileResponse, 0, len(all))
	for i, p := range all {
		out = append(out, profileResponse(p, i == len(all)-1))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out, "count": len(out)})
}

// QualityWindow handles GET /api/v1/quality/window
func (h *Handler) QualityWindow(c *gin.Context) {
	c.JSON(http.StatusOK, h.window.Snapshot())
}

// Export handles GET /api/v1/export
func (h *Handler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.store.AllProducts(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	messages, err := h.store.ListMessages(ctx, database.MessageFilter{})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	name := "wholesale-" + h.now().UTC().Format("20060102-150405") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, products, messages); err != nil {
		h.log.Error("Export failed", logger.Error(err))
		_ = c.Error(err)
	}
}

// Replay handles POST /api/v1/replay
func (h *Handler) Replay(c *gin.Context) {
	var opts ingest.ReplayOptions
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
	}

	report, err := h.ingest.Replay(c.Request.Context(), opts)
	if err != nil {
		h.respondIngestError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Version handles GET /version
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": h.cfg.Version})
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	if n == 0 {
		return fallback, nil
	}
	return n, nil
}

func respondError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{Status: "error", Error: err.Error()})
}
