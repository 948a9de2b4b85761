package funding

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/equiseed/equiseed/internal/platform/httpx"
	"github.com/equiseed/equiseed/internal/rbac"
	"github.com/equiseed/equiseed/internal/shared"
)

// QuestionnaireSource yields the round names a founder listed at
// registration, used as a fallback when no round rows exist yet.
type QuestionnaireSource interface {
	QuestionnaireRounds(ctx context.Context, userID int64) ([]string, error)
}

// Handler manages funding endpoints.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	questionnaire QuestionnaireSource
	rbac          rbac.Middleware
	validator     *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, questionnaire QuestionnaireSource, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		questionnaire: questionnaire,
		rbac:          rbacMW,
		validator:     validator.New(),
	}
}

// MountRoutes registers founder-facing funding routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermFundingView))
		r.Get("/rounds", h.listUserRounds)
		r.Get("/new-rounds", h.listNewRounds)
		r.Get("/next-round", h.nextRound)
		r.Get("/rounds/{id}", h.roundView)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermFundingEdit))
		r.Post("/store-bulk", h.storeBulk)
		r.Post("/new-round", h.createNewRound)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermFundingInvest))
		r.Post("/rounds/{id}/investors", h.recordInvestment)
	})
}

// MountAdminRoutes registers the admin review workflow.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermFundingReview))
		r.Get("/pending", h.reviewQueue)
		r.Get("/rounds/{id}", h.roundView)
		r.Get("/rounds/{id}/history", h.approvalHistory)
		r.Post("/rounds/{id}/approve", h.approveRound)
		r.Post("/rounds/{id}/reject", h.rejectRound)
		r.Post("/rounds/{id}/activate", h.activateRound)
		r.Post("/rounds/{id}/close", h.closeRound)
	})
}

func (h *Handler) storeBulk(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	var req StoreBulkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}

	inputs := make([]LegacyRoundInput, 0, len(req.Rounds))
	for _, round := range req.Rounds {
		input := LegacyRoundInput{
			RoundType:          round.RoundType,
			FundingRaised:      round.FundingRaised,
			ValuationAmount:    round.ValuationAmount,
			FundingDate:        round.FundingDate,
			EquityDiluted:      round.EquityDiluted,
			HasNotRaisedBefore: round.HasNotRaisedBefore,
		}
		for _, inv := range round.Investors {
			input.Investors = append(input.Investors, LegacyInvestorInput{Name: inv.Name, AmountInvested: inv.AmountInvested})
		}
		for _, doc := range round.Documents {
			input.Documents = append(input.Documents, LegacyDocumentInput{FilePath: doc.FilePath, OriginalName: doc.OriginalName})
		}
		inputs = append(inputs, input)
	}

	created, err := h.service.CreateLegacyRounds(r.Context(), actorID, inputs)
	if err != nil {
		h.logger.Error("store bulk rounds", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Funding rounds created successfully",
		"data":    created,
	})
}

func (h *Handler) createNewRound(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	var req NewRoundRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}

	round, err := h.service.CreateNewRound(r.Context(), actorID, NewRoundInput{
		RoundType:         req.RoundType,
		CurrentValuation:  req.CurrentValuation,
		SharesDiluted:     req.SharesDiluted,
		TargetAmount:      req.TargetAmount,
		MinimumInvestment: req.MinimumInvestment,
		RoundOpeningDate:  req.RoundOpeningDate,
		RoundDuration:     req.RoundDuration,
		GracePeriod:       req.GracePeriod,
		ExitStrategy:      req.ExitStrategy,
		ExpectedExitTime:  req.ExpectedExitTime,
		ExpectedReturns:   req.ExpectedReturns,
		Comments:          req.Comments,
	})
	if err != nil {
		h.logger.Error("create new round", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "New funding round created successfully",
		"data":    round,
	})
}

func (h *Handler) listUserRounds(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	var questionnaire []string
	if h.questionnaire != nil {
		rounds, err := h.questionnaire.QuestionnaireRounds(r.Context(), actorID)
		if err != nil {
			h.logger.Warn("load questionnaire rounds", slog.Any("error", err))
		} else {
			questionnaire = rounds
		}
	}
	summaries, err := h.service.ListUserRounds(r.Context(), actorID, questionnaire)
	if err != nil {
		h.logger.Error("list user rounds", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": summaries})
}

func (h *Handler) listNewRounds(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	rounds, err := h.service.ListNewRounds(r.Context(), actorID)
	if err != nil {
		h.logger.Error("list new rounds", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": rounds})
}

func (h *Handler) nextRound(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	next, err := h.service.NextRoundFor(r.Context(), actorID)
	if err != nil {
		h.logger.Error("resolve next round", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": next})
}

func (h *Handler) roundView(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid round id")
		return
	}
	view, err := h.service.RoundView(r.Context(), roundID)
	if err != nil {
		h.logger.Error("round view", slog.Any("error", err), slog.Int64("round_id", roundID))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": view})
}

func (h *Handler) recordInvestment(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid round id")
		return
	}
	var req InvestmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.RecordInvestment(r.Context(), InvestmentInput{
		RoundID:         roundID,
		Name:            req.Name,
		AmountInvested:  req.AmountInvested,
		CommitmentDate:  req.CommitmentDate,
		GracePeriodDays: req.GracePeriodDays,
	})
	if err != nil {
		h.logger.Error("record investment", slog.Any("error", err), slog.Int64("round_id", roundID))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"data":                   result.Investor,
		"equity_diluted":         result.EquityPercent,
		"total_committed_amount": result.TotalCommitted,
	})
}

func (h *Handler) reviewQueue(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.service.ReviewQueue(r.Context())
	if err != nil {
		h.logger.Error("review queue", slog.Any("error", err))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": grouped})
}

func (h *Handler) approvalHistory(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid round id")
		return
	}
	history, err := h.service.ApprovalHistory(r.Context(), roundID)
	if err != nil {
		h.logger.Error("approval history", slog.Any("error", err), slog.Int64("round_id", roundID))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": history})
}

func (h *Handler) approveRound(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Funding round approved successfully", func(ctx context.Context, actorID, roundID int64) (FundingRound, error) {
		return h.service.Approve(ctx, actorID, roundID)
	})
}

func (h *Handler) rejectRound(w http.ResponseWriter, r *http.Request) {
	var req RejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		return
	}
	h.transition(w, r, "Funding round rejected successfully", func(ctx context.Context, actorID, roundID int64) (FundingRound, error) {
		return h.service.Reject(ctx, actorID, roundID, req.RejectionMessage)
	})
}

func (h *Handler) activateRound(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Funding round activated successfully", func(ctx context.Context, actorID, roundID int64) (FundingRound, error) {
		return h.service.Activate(ctx, actorID, roundID)
	})
}

func (h *Handler) closeRound(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Funding round closed successfully", func(ctx context.Context, actorID, roundID int64) (FundingRound, error) {
		return h.service.Close(ctx, actorID, roundID)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, message string, fn func(ctx context.Context, actorID, roundID int64) (FundingRound, error)) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	roundID, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid round id")
		return
	}
	round, err := fn(r.Context(), actorID, roundID)
	if err != nil {
		h.logger.Error("round transition", slog.Any("error", err), slog.Int64("round_id", roundID))
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": message, "data": round})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// respondError maps funding sentinels before deferring to the shared mapper.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrArithmetic):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrAlreadyApproved), errors.Is(err, ErrAlreadyActive), errors.Is(err, ErrDuplicateRound):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Transition", err.Error())
	case errors.Is(err, ErrTargetExceeded):
		httpx.Problem(w, http.StatusBadRequest, "Target Exceeded", err.Error())
	case errors.Is(err, ErrMissingDetail):
		httpx.Problem(w, http.StatusBadRequest, "Missing Funding Detail", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
