package finalization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
)

// Stage names the phase a finalization run is in; used for logging.
type Stage string

const (
	StageResolving  Stage = "RESOLVING"
	StageCollecting Stage = "COLLECTING"
	StageComputing  Stage = "COMPUTING"
	StageValidating Stage = "VALIDATING"
	StageCommitting Stage = "COMMITTING"
	StageDone       Stage = "DONE"
	StageFailed     Stage = "FAILED"
)

type FinalizationServiceImpl struct {
	uow              finalization.UnitOfWork
	directory        finalization.EmployeeDirectory
	timeEntryRepo    finalization.TimeEntryRepository
	exceptionRepo    finalization.AttendanceExceptionRepository
	leaveRequestRepo finalization.LeaveRequestRepository
	salaryRepo       finalization.SalaryRepository
	finalizationRepo finalization.FinalizationRepository
	timesheetRepo    finalization.TimesheetRepository
	leaveTxRepo      finalization.LeaveTransactionRepository
	now              func() time.Time
}

func NewFinalizationService(
	uow finalization.UnitOfWork,
	directory finalization.EmployeeDirectory,
	timeEntryRepo finalization.TimeEntryRepository,
	exceptionRepo finalization.AttendanceExceptionRepository,
	leaveRequestRepo finalization.LeaveRequestRepository,
	salaryRepo finalization.SalaryRepository,
	finalizationRepo finalization.FinalizationRepository,
	timesheetRepo finalization.TimesheetRepository,
	leaveTxRepo finalization.LeaveTransactionRepository,
) finalization.FinalizationService {
	return &FinalizationServiceImpl{
		uow:              uow,
		directory:        directory,
		timeEntryRepo:    timeEntryRepo,
		exceptionRepo:    exceptionRepo,
		leaveRequestRepo: leaveRequestRepo,
		salaryRepo:       salaryRepo,
		finalizationRepo: finalizationRepo,
		timesheetRepo:    timesheetRepo,
		leaveTxRepo:      leaveTxRepo,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func logStage(stage Stage, req finalization.FinalizeRequest, args ...any) {
	attrs := append([]any{
		"stage", stage,
		"company_id", req.CompanyID,
		"period_start", req.PeriodStart,
		"period_end", req.PeriodEnd,
	}, args...)
	if stage == StageFailed {
		slog.Warn("Finalization stage", attrs...)
		return
	}
	slog.Debug("Finalization stage", attrs...)
}

// ========== FINALIZE ==========

func (s *FinalizationServiceImpl) Finalize(ctx context.Context, req finalization.FinalizeRequest) (finalization.FinalizeResult, error) {
	if err := req.Validate(); err != nil {
		return finalization.FinalizeResult{}, err
	}
	periodStart, periodEnd := req.Period()
	departmentID := req.Department()

	logStage(StageResolving, req)
	employees, rejected, err := s.resolveScope(ctx, req, departmentID)
	if err != nil {
		logStage(StageFailed, req, "error", err)
		return finalization.FinalizeResult{}, err
	}

	logStage(StageCollecting, req, "employee_count", len(employees))
	data, err := s.collect(ctx, employeeIDs(employees), periodStart, periodEnd)
	if err != nil {
		logStage(StageFailed, req, "error", err)
		return finalization.FinalizeResult{}, err
	}

	logStage(StageComputing, req)
	summary := computeSummary(employees, data, periodStart, periodEnd, departmentID)
	summary.ValidationErrors = append(summary.ValidationErrors, rejectedScopeErrors(rejected)...)

	logStage(StageValidating, req, "validation_errors", len(summary.ValidationErrors))
	if req.PreviewOnly {
		logStage(StageDone, req, "preview", true)
		return finalization.FinalizeResult{Preview: true, Summary: summary}, nil
	}
	if len(summary.ValidationErrors) > 0 {
		logStage(StageFailed, req, "error", finalization.ErrValidationFailed)
		return finalization.FinalizeResult{Summary: summary}, finalization.ErrValidationFailed
	}

	logStage(StageCommitting, req)
	record, err := s.commit(ctx, req, periodStart, periodEnd, departmentID, employees, summary)
	if err != nil {
		logStage(StageFailed, req, "error", err)
		return finalization.FinalizeResult{}, err
	}

	logStage(StageDone, req, "finalization_id", record.ID, "sync_status", record.SyncStatus)
	slog.Info("Finalized period",
		"finalization_id", record.ID,
		"company_id", record.CompanyID,
		"employee_count", record.EmployeeCount,
		"leave_transactions", record.LeaveTransactionsCreated,
		"sync_status", record.SyncStatus,
	)

	return finalization.FinalizeResult{
		FinalizationID: record.ID,
		SyncStatus:     record.SyncStatus,
		Summary:        summary,
		Message:        fmt.Sprintf("Finalized %d employees with %d leave transactions", record.EmployeeCount, record.LeaveTransactionsCreated),
	}, nil
}

// commit upserts the finalization record and applies the three dependent
// writes in one unit of work. Each dependent write runs as a nested unit: its
// failure is logged, recorded on the record and marks it incomplete, while the
// upsert and the other writes still land.
func (s *FinalizationServiceImpl) commit(
	ctx context.Context,
	req finalization.FinalizeRequest,
	periodStart, periodEnd time.Time,
	departmentID *string,
	employees []finalization.Employee,
	summary finalization.FinalizationSummary,
) (finalization.FinalizationRecord, error) {
	ids := employeeIDs(employees)
	var saved finalization.FinalizationRecord

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		record, err := s.finalizationRepo.Upsert(ctx, finalization.FinalizationRecord{
			CompanyID:                req.CompanyID,
			PeriodStart:              periodStart,
			PeriodEnd:                periodEnd,
			DepartmentID:             departmentID,
			EmployeeIDs:              ids,
			EmployeeCount:            summary.EmployeeCount,
			TotalRegularHours:        summary.TotalRegularHours,
			TotalOvertimeHours:       summary.TotalOvertimeHours,
			AbsencesExcused:          summary.AbsencesExcused,
			AbsencesUnexcused:        summary.AbsencesUnexcused,
			LeaveTransactionsCreated: len(summary.LeaveTransactions),
			Status:                   finalization.FinalizationStatusFinalized,
			SyncStatus:               finalization.SyncStatusComplete,
			SyncErrors:               []string{},
			FinalizedBy:              req.TimekeeperID,
			FinalizedAt:              s.now(),
		})
		if err != nil {
			return &finalization.CommitError{Err: err}
		}

		var syncErrors []string
		created := 0

		if err := s.sideWrite(ctx, record.ID, "timesheets", func(ctx context.Context) error {
			_, err := s.timesheetRepo.MarkFinalized(ctx, req.CompanyID, ids, periodStart, periodEnd, record.ID)
			return err
		}); err != nil {
			syncErrors = append(syncErrors, fmt.Sprintf("timesheets: %v", err))
		}

		inserted := 0
		if err := s.sideWrite(ctx, record.ID, "leave transactions", func(ctx context.Context) error {
			txs := make([]finalization.LeaveTransaction, len(summary.LeaveTransactions))
			for i, tx := range summary.LeaveTransactions {
				tx.FinalizationID = record.ID
				txs[i] = tx
			}
			var err error
			inserted, err = s.leaveTxRepo.ReplaceForFinalization(ctx, record.ID, txs)
			return err
		}); err != nil {
			syncErrors = append(syncErrors, fmt.Sprintf("leave transactions: %v", err))
		} else {
			created = inserted
		}

		if err := s.sideWrite(ctx, record.ID, "attendance exceptions", func(ctx context.Context) error {
			_, err := s.exceptionRepo.MarkPayrollProcessed(ctx, ids, periodStart, periodEnd)
			return err
		}); err != nil {
			syncErrors = append(syncErrors, fmt.Sprintf("attendance exceptions: %v", err))
		}

		status := finalization.SyncStatusComplete
		if len(syncErrors) > 0 {
			status = finalization.SyncStatusIncomplete
		} else {
			syncErrors = []string{}
		}

		if err := s.finalizationRepo.UpdateSyncStatus(ctx, record.ID, status, syncErrors, created); err != nil {
			return &finalization.CommitError{Err: err}
		}

		record.SyncStatus = status
		record.SyncErrors = syncErrors
		record.LeaveTransactionsCreated = created
		saved = record
		return nil
	})
	if err != nil {
		var commitErr *finalization.CommitError
		if errors.As(err, &commitErr) {
			return finalization.FinalizationRecord{}, err
		}
		return finalization.FinalizationRecord{}, &finalization.CommitError{Err: err}
	}

	return saved, nil
}

func (s *FinalizationServiceImpl) sideWrite(ctx context.Context, finalizationID, name string, fn func(ctx context.Context) error) error {
	err := s.uow.Do(ctx, fn)
	if err != nil {
		slog.Warn("Finalization side write failed",
			"finalization_id", finalizationID,
			"write", name,
			"error", err,
		)
	}
	return err
}

// ========== READ ==========

func (s *FinalizationServiceImpl) GetFinalization(ctx context.Context, companyID string, id string) (finalization.FinalizationResponse, error) {
	record, err := s.finalizationRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return finalization.FinalizationResponse{}, err
	}

	txs, err := s.leaveTxRepo.ListByFinalization(ctx, record.ID)
	if err != nil {
		return finalization.FinalizationResponse{}, fmt.Errorf("failed to list leave transactions: %w", err)
	}

	resp := toFinalizationResponse(record)
	resp.LeaveTransactions = txs
	return resp, nil
}

func (s *FinalizationServiceImpl) ListFinalizations(ctx context.Context, companyID string, filter finalization.FinalizationFilter) (finalization.ListFinalizationResponse, error) {
	if err := filter.Validate(); err != nil {
		return finalization.ListFinalizationResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	records, total, err := s.finalizationRepo.List(ctx, companyID, filter)
	if err != nil {
		return finalization.ListFinalizationResponse{}, err
	}

	data := make([]finalization.FinalizationResponse, len(records))
	for i, r := range records {
		data[i] = toFinalizationResponse(r)
	}

	return finalization.ListFinalizationResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func toFinalizationResponse(r finalization.FinalizationRecord) finalization.FinalizationResponse {
	return finalization.FinalizationResponse{
		ID:                       r.ID,
		CompanyID:                r.CompanyID,
		PeriodStart:              r.PeriodStart.Format(finalization.DateLayout),
		PeriodEnd:                r.PeriodEnd.Format(finalization.DateLayout),
		DepartmentID:             r.DepartmentID,
		EmployeeCount:            r.EmployeeCount,
		TotalRegularHours:        r.TotalRegularHours,
		TotalOvertimeHours:       r.TotalOvertimeHours,
		AbsencesExcused:          r.AbsencesExcused,
		AbsencesUnexcused:        r.AbsencesUnexcused,
		LeaveTransactionsCreated: r.LeaveTransactionsCreated,
		Status:                   string(r.Status),
		SyncStatus:               string(r.SyncStatus),
		SyncErrors:               r.SyncErrors,
		FinalizedBy:              r.FinalizedBy,
		FinalizedAt:              r.FinalizedAt.Format(time.RFC3339),
	}
}
