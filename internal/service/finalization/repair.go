package finalization

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
)

// RepairIncomplete re-runs the commit of every incomplete finalization with
// the scope it was recorded with. Records that fail again stay incomplete and
// are picked up on the next run.
func (s *FinalizationServiceImpl) RepairIncomplete(ctx context.Context, limit int) (int, error) {
	records, err := s.finalizationRepo.ListIncomplete(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list incomplete finalizations: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	repaired := 0
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}

		req := finalization.FinalizeRequest{
			CompanyID:    rec.CompanyID,
			PeriodStart:  rec.PeriodStart.Format(finalization.DateLayout),
			PeriodEnd:    rec.PeriodEnd.Format(finalization.DateLayout),
			DepartmentID: rec.DepartmentID,
			EmployeeIDs:  rec.EmployeeIDs,
			TimekeeperID: rec.FinalizedBy,
		}

		result, err := s.Finalize(ctx, req)
		if err != nil {
			slog.Warn("Failed to repair finalization", "finalization_id", rec.ID, "error", err)
			continue
		}
		if result.SyncStatus == finalization.SyncStatusComplete {
			repaired++
		}
	}

	slog.Info("Repaired incomplete finalizations", "candidates", len(records), "repaired", repaired)
	return repaired, nil
}
