package reconciliation

import (
	"errors"

	"forecast-recon/core/logger"
	"forecast-recon/feature/reconciliation/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ActorHeader carries the caller identity recorded on runs and overrides.
const ActorHeader = logger.ActorHeader

// Handler handles HTTP requests for reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	// Force import for Swagger
	var _ = models.ReconciliationRun{}
	return &Handler{service: service}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/reconciliation")
	group.Post("/runs", h.HandleRun)
	group.Get("/runs", h.HandleListRuns)
	group.Get("/runs/latest", h.HandleLatestRun)
	group.Get("/runs/stats", h.HandleRunStats)
	group.Post("/match", h.HandleMatch)
	group.Post("/unmatch", h.HandleUnmatch)
	group.Post("/exclusions", h.HandleExclusion)
	group.Get("/orders", h.HandleListOrders)
	group.Get("/gl", h.HandleListGLEntries)
}

// RunRequest is the body of POST /reconciliation/runs. Omitted parameters use the configured defaults.
type RunRequest struct {
	Period            string           `json:"period"`
	FuzzyThreshold    *float64         `json:"fuzzy_threshold"`
	DateToleranceDays *int             `json:"date_tolerance_days"`
	AmountTolerance   *decimal.Decimal `json:"amount_tolerance" swaggertype:"string"`
	Strategies        []string         `json:"strategies"`
}

// Params merges the request onto cfg's defaults.
func (r RunRequest) Params(cfg Config) (RunParams, error) {
	p, err := cfg.DefaultParams(r.Period)
	if err != nil {
		return RunParams{}, err
	}
	if r.FuzzyThreshold != nil {
		p.FuzzyThreshold = *r.FuzzyThreshold
	}
	if r.DateToleranceDays != nil {
		p.DateToleranceDays = *r.DateToleranceDays
	}
	if r.AmountTolerance != nil {
		p.AmountTolerance = *r.AmountTolerance
	}
	if len(r.Strategies) > 0 {
		p.Strategies = r.Strategies
	}
	return p, nil
}

// HandleRun runs reconciliation for a period.
// @Summary Run Reconciliation
// @Description Matches unresolved order forecasts against GL entries of one period. Exact matches are applied before fuzzy ones; already resolved records are counted, not touched.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param X-Actor header string false "Caller identity"
// @Param request body RunRequest true "Run parameters"
// @Success 200 {object} RunResult
// @Failure 400 {object} map[string]string "Validation Error"
// @Failure 409 {object} map[string]string "Concurrent Run"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /reconciliation/runs [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, l, &ValidationError{Message: "malformed request body"})
	}
	params, err := req.Params(h.service.Config())
	if err != nil {
		return h.fail(c, l, err)
	}

	result, err := h.service.Run(c.UserContext(), params, actor(c))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(result)
}

// HandleListRuns lists the runs of a period.
// @Summary List Runs
// @Description Lists the reconciliation runs of a period, newest first.
// @Tags reconciliation
// @Produce json
// @Param period query string true "Accounting period (YYYY-MM)"
// @Success 200 {array} models.ReconciliationRun
// @Failure 400 {object} map[string]string "Validation Error"
// @Router /reconciliation/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.service.RunsByPeriod(c.UserContext(), c.Query("period"))
	if err != nil {
		return h.fail(c, logger.WithRayID(h.service.logger, c), err)
	}
	return c.JSON(runs)
}

// HandleLatestRun returns the newest run of a period.
// @Summary Latest Run
// @Tags reconciliation
// @Produce json
// @Param period query string true "Accounting period (YYYY-MM)"
// @Success 200 {object} models.ReconciliationRun
// @Failure 404 {object} map[string]string "No Run"
// @Router /reconciliation/runs/latest [get]
func (h *Handler) HandleLatestRun(c *fiber.Ctx) error {
	period := c.Query("period")
	run, err := h.service.LatestRun(c.UserContext(), period)
	if err != nil {
		return h.fail(c, logger.WithRayID(h.service.logger, c), err)
	}
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no run for " + period})
	}
	return c.JSON(run)
}

// HandleRunStats aggregates the run ledger.
// @Summary Run Statistics
// @Tags reconciliation
// @Produce json
// @Param period query string false "Accounting period (YYYY-MM); all periods when omitted"
// @Success 200 {object} RunStats
// @Router /reconciliation/runs/stats [get]
func (h *Handler) HandleRunStats(c *fiber.Ctx) error {
	stats, err := h.service.RunStats(c.UserContext(), c.Query("period"))
	if err != nil {
		return h.fail(c, logger.WithRayID(h.service.logger, c), err)
	}
	return c.JSON(stats)
}

// HandleMatch pairs an order with a GL entry by hand.
// @Summary Manual Match
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param X-Actor header string false "Caller identity"
// @Param request body MatchRequest true "Order and GL entry"
// @Success 200 {object} Pair
// @Failure 404 {object} map[string]string "Unknown Record"
// @Failure 409 {object} map[string]string "State Conflict"
// @Router /reconciliation/match [post]
func (h *Handler) HandleMatch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var req MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, l, &ValidationError{Message: "malformed request body"})
	}
	pair, err := h.service.ManualMatch(c.UserContext(), req, actor(c))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(pair)
}

// HandleUnmatch clears a pairing.
// @Summary Unmatch
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param X-Actor header string false "Caller identity"
// @Param request body MatchRequest true "Order and GL entry"
// @Success 200 {object} Pair
// @Failure 404 {object} map[string]string "Unknown Record"
// @Failure 409 {object} map[string]string "State Conflict"
// @Router /reconciliation/unmatch [post]
func (h *Handler) HandleUnmatch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var req MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, l, &ValidationError{Message: "malformed request body"})
	}
	pair, err := h.service.Unmatch(c.UserContext(), req, actor(c))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(pair)
}

// HandleExclusion excludes or re-includes records.
// @Summary Set Exclusion
// @Description Excludes or re-includes several orders or GL entries. The call is atomic: one rejected id rejects all.
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param X-Actor header string false "Caller identity"
// @Param request body ExclusionRequest true "Records and flag"
// @Success 200 {object} ExclusionResult
// @Failure 400 {object} map[string]string "Validation Error"
// @Failure 409 {object} map[string]string "State Conflict"
// @Router /reconciliation/exclusions [post]
func (h *Handler) HandleExclusion(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	var req ExclusionRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, l, &ValidationError{Message: "malformed request body"})
	}
	result, err := h.service.SetExclusion(c.UserContext(), req, actor(c))
	if err != nil {
		return h.fail(c, l, err)
	}
	return c.JSON(result)
}

// HandleListOrders lists order forecasts.
// @Summary List Orders
// @Tags reconciliation
// @Produce json
// @Param period query string true "Accounting period (YYYY-MM)"
// @Param status query string false "unmatched, fuzzy, matched or excluded"
// @Success 200 {array} models.OrderForecast
// @Router /reconciliation/orders [get]
func (h *Handler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.Orders(c.UserContext(), c.Query("period"), c.Query("status"))
	if err != nil {
		return h.fail(c, logger.WithRayID(h.service.logger, c), err)
	}
	return c.JSON(orders)
}

// HandleListGLEntries lists GL entries.
// @Summary List GL Entries
// @Tags reconciliation
// @Produce json
// @Param period query string true "Accounting period (YYYY-MM)"
// @Param status query string false "unmatched or matched"
// @Success 200 {array} models.GLEntry
// @Router /reconciliation/gl [get]
func (h *Handler) HandleListGLEntries(c *fiber.Ctx) error {
	entries, err := h.service.GLEntries(c.UserContext(), c.Query("period"), c.Query("status"))
	if err != nil {
		return h.fail(c, logger.WithRayID(h.service.logger, c), err)
	}
	return c.JSON(entries)
}

func actor(c *fiber.Ctx) string {
	if a := c.Get(ActorHeader); a != "" {
		return a
	}
	return "api"
}

// StatusCode maps a service error onto an HTTP status.
func StatusCode(err error) int {
	var (
		validation *ValidationError
		conflict   *StateConflictError
		notFound   *NotFoundError
		concurrent *ConcurrencyConflictError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &conflict), errors.As(err, &concurrent):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, l *zap.Logger, err error) error {
	status := StatusCode(err)
	body := fiber.Map{"error": err.Error()}

	var conflict *StateConflictError
	if errors.As(err, &conflict) {
		body["status"] = conflict.Status
		body["kind"] = conflict.Kind
	}
	if status >= fiber.StatusInternalServerError {
		l.Error("Reconciliation request failed", zap.Error(err))
	} else {
		l.Info("Reconciliation request rejected", zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(body)
}
