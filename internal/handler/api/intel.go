package api

import (
	"github.com/labstack/echo/v4"

	"IntelPull/internal/domain/models"
	"IntelPull/internal/domain/repository"
	"IntelPull/internal/usecase"
	xhttp "IntelPull/pkg/http"
)

// Handler exposes the intelligence facade: cached analysis state, on-demand
// runs, the heuristic score and raw per-source views.
type Handler struct {
	analysis *usecase.AnalysisUsecase
	score    *usecase.ScoreUsecase

	news    repository.NewsSource
	quotes  repository.QuoteSource
	flights repository.FlightSource
	vessels repository.VesselSource
	social  repository.SocialSource
}

func NewHandler(
	analysis *usecase.AnalysisUsecase,
	score *usecase.ScoreUsecase,
	news repository.NewsSource,
	quotes repository.QuoteSource,
	flights repository.FlightSource,
	vessels repository.VesselSource,
	social repository.SocialSource,
) *Handler {
	return &Handler{
		analysis: analysis,
		score:    score,
		news:     news,
		quotes:   quotes,
		flights:  flights,
		vessels:  vessels,
		social:   social,
	}
}

// RegisterRoutes mounts the API.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)

	api := e.Group("/api")
	api.GET("/analysis", h.Analysis)
	api.GET("/score", h.Score)
	api.GET("/stock/:symbol", h.Stock)
	api.GET("/news", h.News)
	api.GET("/flights", h.Flights)
	api.GET("/navy", h.Navy)
	api.GET("/reddit", h.Social)
	api.GET("/run-mini", h.RunMini)
	api.GET("/run-deep", h.RunDeep)
}

// Root describes the service.
func (h *Handler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":  "online",
		"message": "Intelligence aggregation API with tiered AI analysis",
		"endpoints": map[string]string{
			"analysis": "/api/analysis - Latest cached predictions per tier",
			"score":    "/api/score - Aggregated heuristic threat score",
			"stock":    "/api/stock/SYMBOL - Defense contractor quote",
			"news":     "/api/news - Military/geopolitical news",
			"flights":  "/api/flights - Military flight tracking",
			"navy":     "/api/navy - Naval vessel positions",
			"reddit":   "/api/reddit - Social intelligence",
			"runMini":  "/api/run-mini - Trigger one mini-tier run",
			"runDeep":  "/api/run-deep - Trigger one deep-tier run",
		},
	})
}

// Analysis returns the cached per-tier state verbatim; slots are null until a
// run has succeeded.
func (h *Handler) Analysis(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.analysis.State())
}

// Score computes the heuristic threat score from fresh news+stocks.
func (h *Handler) Score(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.score.Compute(c.Request().Context()))
}

// Stock returns one symbol's quote.
func (h *Handler) Stock(c echo.Context) error {
	var req models.StockRequest
	if payload := xhttp.ReadAndValidateRequest(c, &req); payload != nil {
		return xhttp.BadRequestResponse(c, payload)
	}
	return xhttp.SuccessResponse(c, h.quotes.Quote(c.Request().Context(), req.Symbol))
}

// News returns the latest matching headlines.
func (h *Handler) News(c echo.Context) error {
	var req models.NewsRequest
	if payload := xhttp.ReadAndValidateRequest(c, &req); payload != nil {
		return xhttp.BadRequestResponse(c, payload)
	}

	report := h.news.Fetch(c.Request().Context())
	if len(report.Articles) > req.Limit {
		trimmed := *report
		trimmed.Articles = report.Articles[:req.Limit]
		return xhttp.SuccessResponse(c, &trimmed)
	}
	return xhttp.SuccessResponse(c, report)
}

// Flights returns the filtered military flight picture.
func (h *Handler) Flights(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.flights.Fetch(c.Request().Context()))
}

// Navy returns the vessel placeholder report.
func (h *Handler) Navy(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.vessels.Fetch(c.Request().Context()))
}

// Social returns the latest matching posts.
func (h *Handler) Social(c echo.Context) error {
	var req models.SocialRequest
	if payload := xhttp.ReadAndValidateRequest(c, &req); payload != nil {
		return xhttp.BadRequestResponse(c, payload)
	}

	report := h.social.Fetch(c.Request().Context())
	if len(report.Posts) > req.Limit {
		trimmed := *report
		trimmed.Posts = report.Posts[:req.Limit]
		return xhttp.SuccessResponse(c, &trimmed)
	}
	return xhttp.SuccessResponse(c, report)
}

// RunMini triggers one mini-tier run and returns its result.
func (h *Handler) RunMini(c echo.Context) error {
	res, err := h.analysis.RunMini(c.Request().Context())
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}

// RunDeep triggers one deep-tier run and returns its result.
func (h *Handler) RunDeep(c echo.Context) error {
	res, err := h.analysis.RunDeep(c.Request().Context())
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}
