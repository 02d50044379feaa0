package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/plowtrack/module/core/domain"
	"github.com/nandanugg/plowtrack/module/core/query"
)

// isoLayout mirrors ISO 8601 with optional microseconds.
const isoLayout = "2006-01-02T15:04:05.999999Z07:00"

type plowService interface {
	GetPlow(ctx context.Context, id string, c query.Constraints) (*domain.Plow, error)
	ListPlows(ctx context.Context, c query.Constraints) ([]domain.Plow, error)
}

type pointResponse struct {
	Timestamp string          `json:"timestamp"`
	Coords    json.RawMessage `json:"coords"`
	Events    json.RawMessage `json:"events"`
}

type plowResponse struct {
	ID      string          `json:"id"`
	LastLoc pointResponse   `json:"last_loc"`
	History []pointResponse `json:"history"`
}

type PlowHandler struct {
	plowSvc plowService
	parser  *query.Parser
}

func NewPlowHandler(plowSvc plowService, parser *query.Parser) *PlowHandler {
	return &PlowHandler{plowSvc: plowSvc, parser: parser}
}

func (h *PlowHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/api/v1/snowplow")
	g.GET("/", h.ListPlows)
	g.GET("/:plow_id", h.GetPlow)
}

func (h *PlowHandler) GetPlow(c *gin.Context) {
	plowID := c.Param("plow_id")

	constraints := h.constraints(c)

	p, err := h.plowSvc.GetPlow(c.Request.Context(), plowID, constraints)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSONP(http.StatusOK, toPlowResponse(p))
}

func (h *PlowHandler) ListPlows(c *gin.Context) {
	constraints := h.constraints(c)

	plows, err := h.plowSvc.ListPlows(c.Request.Context(), constraints)
	if err != nil {
		h.writeError(c, err)
		return
	}

	results := make([]plowResponse, len(plows))
	for i := range plows {
		results[i] = toPlowResponse(&plows[i])
	}
	c.JSONP(http.StatusOK, results)
}

// constraints never rejects a request; unusable values are dropped by the parser.
func (h *PlowHandler) constraints(c *gin.Context) query.Constraints {
	return h.parser.Parse(query.Params{
		History:            c.Query("history"),
		Since:              c.Query("since"),
		Limit:              c.Query("limit"),
		TemporalResolution: c.Query("temporal_resolution"),
	})
}

func (h *PlowHandler) writeError(c *gin.Context, err error) {
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		c.JSONP(http.StatusNotFound, gin.H{"message": nf.Error()})
	case errors.Is(err, domain.ErrStorageUnavailable):
		slog.Error("storage unavailable", "error", err, "path", c.Request.URL.Path)
		c.JSONP(http.StatusServiceUnavailable, gin.H{"message": "storage temporarily unavailable"})
	default:
		slog.Error("query failed", "error", err, "path", c.Request.URL.Path)
		c.JSONP(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func toPlowResponse(p *domain.Plow) plowResponse {
	history := make([]pointResponse, len(p.History))
	for i, pt := range p.History {
		history[i] = toPointResponse(pt)
	}
	return plowResponse{
		ID:      p.ID,
		LastLoc: toPointResponse(p.LastPoint),
		History: history,
	}
}

func toPointResponse(p domain.Point) pointResponse {
	return pointResponse{
		Timestamp: p.Timestamp.Format(isoLayout),
		Coords:    p.Coords,
		Events:    p.Events,
	}
}
