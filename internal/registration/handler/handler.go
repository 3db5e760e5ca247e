package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"signup/internal/platform/middleware"
	"signup/internal/registration/models"
	"signup/internal/registration/postalcode"
	"signup/internal/registration/service"
	"signup/pkg/platform/httputil"
	limits "signup/pkg/platform/validation"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

// Service defines the registration wizard operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, pt models.PersonType) (*service.SessionView, error)
	Get(ctx context.Context, id string) (*service.SessionView, error)
	SetValues(ctx context.Context, id string, edits []service.FieldEdit) (*service.SessionView, error)
	SelectPersonType(ctx context.Context, id string, pt models.PersonType) (*service.SessionView, error)
	Submit(ctx context.Context, id string) (*service.SubmitResult, error)
	Delete(ctx context.Context, id string) error
	Lookup(ctx context.Context, postalCode string) (postalcode.Result, error)
}

// Handler serves the registration wizard endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registrations", h.handleCreate)
	r.Get("/registrations/{id}", h.handleGet)
	r.Delete("/registrations/{id}", h.handleDelete)
	r.Patch("/registrations/{id}/fields", h.handleSetValues)
	r.Put("/registrations/{id}/person-type", h.handleSelectPersonType)
	r.Post("/registrations/{id}/submit", h.handleSubmit)
	r.Get("/postal-codes/{code}", h.handleLookup)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req := &CreateRequest{}
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		decoded, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		req = decoded
	}

	view, err := h.service.Create(ctx, models.PersonType(req.PersonType))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create registration session",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSessionResponse(view))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(view))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[FieldsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := h.service.SetValues(ctx, chi.URLParam(r, "id"), req.ToEdits())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to set registration values",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(view))
}

func (h *Handler) handleSelectPersonType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PersonTypeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := h.service.SelectPersonType(ctx, chi.URLParam(r, "id"), req.ToPersonType())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionResponse(view))
}

// handleSubmit answers 200 on success and 422 with every violation when the
// form is incomplete.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	result, err := h.service.Submit(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logger.ErrorContext(ctx, "registration submission failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Outcome.Succeeded() {
		status = http.StatusUnprocessableEntity
	}
	httputil.WriteJSON(w, status, toSubmitResponse(result))
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := chi.URLParam(r, "code")
	if err := limits.CheckStringLength("postal code", raw, limits.MaxPostalCodeLength); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Lookup(ctx, raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	switch res.Status {
	case postalcode.StatusNotFound:
		status = http.StatusNotFound
	case postalcode.StatusTransportError:
		h.logger.WarnContext(ctx, "postal code lookup unavailable",
			"request_id", middleware.GetRequestID(ctx),
			"error", res.Err,
		)
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, toPostalCodeResponse(postalcode.Normalize(raw), res))
}
