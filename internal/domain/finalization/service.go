package finalization

import "context"

type FinalizationService interface {
	// Finalize runs scope resolution, collection, computation and, unless
	// req.PreviewOnly, the commit. On business validation failure outside
	// preview mode it returns the summary together with ErrValidationFailed.
	Finalize(ctx context.Context, req FinalizeRequest) (FinalizeResult, error)

	GetFinalization(ctx context.Context, companyID string, id string) (FinalizationResponse, error)
	ListFinalizations(ctx context.Context, companyID string, filter FinalizationFilter) (ListFinalizationResponse, error)

	// RepairIncomplete re-commits finalizations whose side writes did not all
	// land. Returns how many were repaired.
	RepairIncomplete(ctx context.Context, limit int) (int, error)
}
