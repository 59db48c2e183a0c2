package handler

import (
	"net/http"

	"github.com/armon/go-metrics"
	"github.com/labstack/echo/v4"
)

type RouterConfig struct {
	JWTSecret   string
	ConfirmRole string
	Metrics     *metrics.InmemSink
}

func NewRouter(h *HoldHandler, cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", Health)
	if cfg.Metrics != nil {
		e.GET("/metrics", Metrics(cfg.Metrics))
	}

	v1 := e.Group("/v1", JWTAuth(cfg.JWTSecret))
	v1.GET("/screenings/:id/seats", h.Seats)
	v1.POST("/screenings/:id/holds", h.PlaceHold)
	v1.GET("/holds/:id", h.GetHold)
	v1.DELETE("/holds/:id", h.CancelHold)
	v1.POST("/holds/:id/confirm", h.ConfirmHold, RequireRole(cfg.ConfirmRole))

	return e
}

func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Metrics serves the current in-memory metrics interval as JSON.
func Metrics(sink *metrics.InmemSink) echo.HandlerFunc {
	return func(c echo.Context) error {
		summary, err := sink.DisplayMetrics(c.Response(), c.Request())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, summary)
	}
}
