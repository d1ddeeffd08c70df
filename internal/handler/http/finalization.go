package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/cmlabs-hris/hris-finalization-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-finalization-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type FinalizationHandler interface {
	Finalize(w http.ResponseWriter, r *http.Request)
	GetFinalization(w http.ResponseWriter, r *http.Request)
	ListFinalizations(w http.ResponseWriter, r *http.Request)
}

type finalizationHandlerImpl struct {
	finalizationService finalization.FinalizationService
}

func NewFinalizationHandler(finalizationService finalization.FinalizationService) FinalizationHandler {
	return &finalizationHandlerImpl{finalizationService: finalizationService}
}

// Finalize answers with the flat preview/commit/validation bodies rather than
// the Response envelope used by the read endpoints.
func (h *finalizationHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	var req finalization.FinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusBadRequest, finalization.ErrorResponse{Error: "Invalid request body"})
		return
	}

	companyID := middleware.CompanyIDFromContext(r.Context())
	if companyID != "" && req.CompanyID != "" && req.CompanyID != companyID {
		response.FinalizeError(w, finalization.ErrCompanyMismatch)
		return
	}

	result, err := h.finalizationService.Finalize(r.Context(), req)
	if errors.Is(err, finalization.ErrValidationFailed) {
		response.JSON(w, http.StatusBadRequest, finalization.ValidationFailedResponse{
			Success:          false,
			Error:            err.Error(),
			ValidationErrors: result.Summary.ValidationErrors,
			Summary:          result.Summary,
		})
		return
	}
	if err != nil {
		response.FinalizeError(w, err)
		return
	}

	if result.Preview {
		response.JSON(w, http.StatusOK, finalization.PreviewResponse{
			Success: true,
			Preview: true,
			Summary: result.Summary,
		})
		return
	}

	response.JSON(w, http.StatusOK, finalization.CommitResponse{
		Success:        true,
		FinalizationID: result.FinalizationID,
		Summary:        result.Summary,
		Message:        result.Message,
	})
}

func (h *finalizationHandlerImpl) GetFinalization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Finalization ID is required", nil)
		return
	}

	result, err := h.finalizationService.GetFinalization(r.Context(), middleware.CompanyIDFromContext(r.Context()), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *finalizationHandlerImpl) ListFinalizations(w http.ResponseWriter, r *http.Request) {
	filter := finalization.FinalizationFilter{
		Page:  1,
		Limit: 20,
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if periodStart := query.Get("period_start"); periodStart != "" {
		filter.PeriodStart = &periodStart
	}
	if periodEnd := query.Get("period_end"); periodEnd != "" {
		filter.PeriodEnd = &periodEnd
	}
	if departmentID := query.Get("department_id"); departmentID != "" {
		filter.DepartmentID = &departmentID
	}
	if syncStatus := query.Get("sync_status"); syncStatus != "" {
		filter.SyncStatus = &syncStatus
	}

	result, err := h.finalizationService.ListFinalizations(r.Context(), middleware.CompanyIDFromContext(r.Context()), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}
