package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/pkg/datetime"
	"github.com/MIgor26/explore-with-me/stats-service/internal/models"
	"github.com/MIgor26/explore-with-me/stats-service/internal/service"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
	"github.com/labstack/echo/v4"
)

type StatsHandler struct {
	svc service.StatsService
}

func NewStatsHandler(svc service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/hit", h.AddHit)
	e.GET("/stats", h.GetStats)
}

func (h *StatsHandler) AddHit(c echo.Context) error {
	var req statsclient.EndpointHit
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	hit := &models.EndpointHit{
		App:       req.App,
		URI:       req.URI,
		IP:        req.IP,
		Timestamp: req.Timestamp.Time,
	}
	if err := h.svc.AddHit(c.Request().Context(), hit); err != nil {
		return err
	}

	return c.NoContent(http.StatusCreated)
}

func (h *StatsHandler) GetStats(c echo.Context) error {
	start, err := parseOptionalTime(c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start: "+err.Error())
	}
	end, err := parseOptionalTime(c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end: "+err.Error())
	}

	unique := false
	if u := c.QueryParam("unique"); u != "" {
		unique, err = strconv.ParseBool(u)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unique must be true or false")
		}
	}

	stats, err := h.svc.GetStats(c.Request().Context(), start, end, parseURIs(c.QueryParams()["uris"]), unique)
	if err != nil {
		return err
	}

	resp := make([]statsclient.ViewStats, len(stats))
	for i, s := range stats {
		resp[i] = statsclient.ViewStats{App: s.App, URI: s.URI, Hits: s.Hits}
	}
	return c.JSON(http.StatusOK, resp)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := datetime.Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseURIs accepts both repeated uris params and a comma-separated list.
func parseURIs(raw []string) []string {
	var uris []string
	for _, r := range raw {
		for _, u := range strings.Split(r, ",") {
			if u = strings.TrimSpace(u); u != "" {
				uris = append(uris, u)
			}
		}
	}
	return uris
}
