package payroll

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"barangay-payroll/internal/bootstrap"
	"barangay-payroll/internal/deduction"
	"barangay-payroll/internal/employee"
	"barangay-payroll/internal/loan"
	"barangay-payroll/internal/messaging/kafka"
	"barangay-payroll/internal/overload"
	payrollerrors "barangay-payroll/internal/payroll/errors"
	"barangay-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Generate(ctx context.Context, actorID string, req GenerateRequest) (GenerateResponse, error)
	Release(ctx context.Context, actorID string, req ReleaseRequest) (ReleaseResponse, error)
	QuerySummary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
	ListEntries(ctx context.Context, req ListEntriesRequest) ([]EntryResponse, error)
	GetEntry(ctx context.Context, id string) (EntryResponse, error)
}

// Dependencies wires the payroll service. Redis and Audit are optional.
type Dependencies struct {
	DB           *sql.DB
	Repo         Repository
	Directory    PersonnelDirectory
	Deductions   deduction.Repository
	Loans        loan.Repository
	Supplemental SupplementalPayStore
	Outbox       kafka.OutboxRepository
	Redis        *redis.Client
	Audit        bootstrap.AuditLogger
	Location     *time.Location
	Now          func() time.Time
}

type service struct {
	db           *sql.DB
	repo         Repository
	directory    PersonnelDirectory
	deductions   deduction.Repository
	loans        loan.Repository
	supplemental SupplementalPayStore
	outbox       kafka.OutboxRepository
	rdb          *redis.Client
	sf           *singleflight.Group
	audit        bootstrap.AuditLogger
	sweeper      Sweeper
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

func NewService(deps Dependencies, logger ...*zap.Logger) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	audit := deps.Audit
	if audit == nil {
		audit = bootstrap.NewStdoutAuditLogger(l)
	}

	return &service{
		db:           deps.DB,
		repo:         deps.Repo,
		directory:    deps.Directory,
		deductions:   deps.Deductions,
		loans:        deps.Loans,
		supplemental: deps.Supplemental,
		outbox:       deps.Outbox,
		rdb:          deps.Redis,
		sf:           &singleflight.Group{},
		audit:        audit,
		sweeper:      NewSweeper(l),
		loc:          loc,
		now:          now,
		logger:       l,
	}
}

func (s *service) Generate(
	ctx context.Context,
	actorID string,
	req GenerateRequest,
) (GenerateResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return GenerateResponse{}, payrollerrors.ErrInvalidActorID
	}

	period, err := s.resolvePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		s.logger.Warn("generate payroll invalid period",
			zap.String("period_start", req.PeriodStart),
			zap.String("period_end", req.PeriodEnd),
			zap.Error(err),
		)
		return GenerateResponse{}, err
	}

	log := s.logger.With(zap.String("request_id", rid), zap.String("period", period.String()))
	log.Debug("generate payroll requested", zap.String("actor_id", actorID))

	finalized, err := s.repo.HasFinalizedForPeriod(ctx, period)
	if err != nil {
		log.Error("generate payroll check released period failed", zap.Error(err))
		return GenerateResponse{}, err
	}
	if finalized {
		log.Warn("generate payroll period already released")
		return GenerateResponse{}, payrollerrors.ErrPeriodAlreadyReleased
	}

	run, err := s.compute(ctx, period)
	if err != nil {
		log.Error("generate payroll compute failed", zap.Error(err))
		return GenerateResponse{}, err
	}
	if len(run.entries) == 0 {
		log.Warn("generate payroll no eligible employees")
		return GenerateResponse{}, payrollerrors.ErrNoEligibleEmployees
	}

	now := s.now()
	for i := range run.entries {
		run.entries[i].GeneratedBy = &actor
		run.entries[i].CreatedAt = now
		run.entries[i].UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("generate payroll begin tx failed", zap.Error(err))
		return GenerateResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := s.sweeper.Sweep(ctx, qtx, nil, now); err != nil {
		return GenerateResponse{}, fmt.Errorf("sweep released entries: %w", err)
	}

	replaced, err := qtx.DeletePendingForPeriod(ctx, period)
	if err != nil {
		log.Error("generate payroll delete pending failed", zap.Error(err))
		return GenerateResponse{}, fmt.Errorf("delete pending entries: %w", err)
	}

	if err := s.deductions.WithTx(tx).CreateBatch(ctx, run.missing); err != nil {
		log.Error("generate payroll apply mandatory deductions failed", zap.Error(err))
		return GenerateResponse{}, fmt.Errorf("apply mandatory deductions: %w", err)
	}

	if err := qtx.CreateBatch(ctx, run.entries); err != nil {
		log.Error("generate payroll insert entries failed", zap.Error(err))
		return GenerateResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("generate payroll commit failed", zap.Error(err))
		return GenerateResponse{}, mapRepositoryError(err)
	}

	s.invalidateSummaries(ctx)

	s.audit.Log(ctx, bootstrap.AuditLog{
		Action:  "PAYROLL_GENERATED",
		ActorID: actorID,
		Message: fmt.Sprintf("payroll %s generated", period.String()),
		Meta: map[string]any{
			"created":  len(run.entries),
			"replaced": replaced,
		},
	})

	log.Info("payroll generated",
		zap.Int("created", len(run.entries)),
		zap.Int64("replaced", replaced),
		zap.Int("mandatory_applied", len(run.missing)),
	)

	return GenerateResponse{
		CreatedCount: len(run.entries),
		Period:       toPeriodResponse(period),
	}, nil
}

func (s *service) QuerySummary(ctx context.Context, req SummaryRequest) (SummaryResponse, error) {
	period, err := s.resolvePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return SummaryResponse{}, err
	}

	var cacheKey string
	if s.rdb != nil {
		if version := s.summaryVersion(ctx); version != "" {
			cacheKey = GetSummaryKey(version, period)
			if resp, ok := s.cachedSummary(ctx, cacheKey); ok {
				return resp, nil
			}
		}
	}

	sfKey := "summary:" + period.String()
	v, err, _ := s.sf.Do(sfKey, func() (interface{}, error) {
		entries, err := s.repo.FindByPeriod(ctx, period, StatusPending, StatusReleased)
		if err != nil {
			return nil, err
		}

		if len(entries) > 0 {
			resp := summarize(period, true, mapToListResponse(entries))
			if cacheKey != "" {
				s.storeSummary(ctx, cacheKey, resp)
			}
			return resp, nil
		}

		run, err := s.compute(ctx, period)
		if err != nil {
			return nil, err
		}
		return summarize(period, false, mapPreviewResponse(run.entries)), nil
	})
	if err != nil {
		s.logger.Error("query payroll summary failed", zap.String("period", period.String()), zap.Error(err))
		return SummaryResponse{}, err
	}

	return v.(SummaryResponse), nil
}

func (s *service) ListEntries(ctx context.Context, req ListEntriesRequest) ([]EntryResponse, error) {
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case "", StatusPending, StatusReleased, StatusArchived:
	default:
		return nil, payrollerrors.ErrInvalidStatusFilter
	}

	start, err := parseOptionalDate(req.PeriodStart)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, payrollerrors.ErrInvalidDateRange
	}

	entries, err := s.repo.FindAll(ctx, EntryFilter{Status: status, PeriodStart: start, PeriodEnd: end})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(entries), nil
}

func (s *service) GetEntry(ctx context.Context, id string) (EntryResponse, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return EntryResponse{}, payrollerrors.ErrInvalidEntryID
	}

	entry, err := s.repo.FindByID(ctx, entryID)
	if err != nil {
		return EntryResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*entry), nil
}

func (s *service) resolvePeriod(start, end string) (Period, error) {
	startDate, err := parseOptionalDate(start)
	if err != nil {
		return Period{}, err
	}
	endDate, err := parseOptionalDate(end)
	if err != nil {
		return Period{}, err
	}
	return ResolvePeriod(startDate, endDate, s.now(), s.loc)
}

type computation struct {
	entries []PayrollEntry
	missing []deduction.Deduction
}

// compute builds the generation-phase entry of every eligible employee in memory.
// missing holds the mandatory instances the entries assume exist.
func (s *service) compute(ctx context.Context, period Period) (computation, error) {
	personnel, err := s.directory.ListActive(ctx, period.End)
	if err != nil {
		return computation{}, fmt.Errorf("list active personnel: %w", err)
	}

	eligible := make([]employee.Personnel, 0, len(personnel))
	ids := make([]uuid.UUID, 0, len(personnel))
	for _, p := range personnel {
		if p.SalaryBasis == nil {
			s.logger.Debug("employee has no salary basis, skipped", zap.String("employee_id", p.ID.String()))
			continue
		}
		eligible = append(eligible, p)
		ids = append(ids, p.ID)
	}
	if len(eligible) == 0 {
		return computation{}, nil
	}

	types, err := s.deductions.ListTypes(ctx)
	if err != nil {
		return computation{}, fmt.Errorf("list deduction types: %w", err)
	}
	instances, err := s.deductions.ListUnarchivedByEmployees(ctx, ids)
	if err != nil {
		return computation{}, fmt.Errorf("list deductions: %w", err)
	}
	loans, err := s.loans.ListActiveByEmployees(ctx, ids)
	if err != nil {
		return computation{}, fmt.Errorf("list loans: %w", err)
	}
	pays, err := s.supplemental.ListUnarchivedByEmployees(ctx, ids)
	if err != nil {
		return computation{}, fmt.Errorf("list supplemental pay: %w", err)
	}

	catalog := NewCatalog(types)
	deductionsBy := groupDeductions(instances)
	loansBy := groupLoans(loans)
	paysBy := make(map[uuid.UUID][]overload.OverloadPay)
	for _, p := range pays {
		paysBy[p.EmployeeID] = append(paysBy[p.EmployeeID], p)
	}

	now := s.now()
	run := computation{entries: make([]PayrollEntry, 0, len(eligible))}
	for _, p := range eligible {
		earnings, _ := AggregateEarnings(p, paysBy[p.ID])
		sel, missing := s.selectWithReconcile(period, catalog, p.ID, deductionsBy[p.ID], earnings.BaseSalary, now)
		run.missing = append(run.missing, missing...)

		run.entries = append(run.entries, BuildEntry(EntryInput{
			Period:     period,
			Personnel:  p,
			Earnings:   earnings,
			Deductions: sel,
			Loans:      PlanInstallments(loansBy[p.ID], period.Factor()),
			Phase:      PhaseGeneration,
			ComputedAt: now,
		}))
	}
	return run, nil
}

// selectWithReconcile fills in missing mandatory instances, then resolves the deduction lines.
func (s *service) selectWithReconcile(
	period Period,
	catalog Catalog,
	employeeID uuid.UUID,
	existing []deduction.Deduction,
	baseSalary int64,
	at time.Time,
) (DeductionSelection, []deduction.Deduction) {
	missing := ReconcileMandatory(catalog, employeeID, existing, baseSalary, at)

	all := make([]deduction.Deduction, 0, len(existing)+len(missing))
	all = append(all, existing...)
	all = append(all, missing...)

	auto := make(map[uuid.UUID]bool, len(missing))
	for _, d := range missing {
		auto[d.ID] = true
	}
	return SelectDeductions(period, catalog, all, auto), missing
}

func groupDeductions(items []deduction.Deduction) map[uuid.UUID][]deduction.Deduction {
	out := make(map[uuid.UUID][]deduction.Deduction)
	for _, d := range items {
		out[d.EmployeeID] = append(out[d.EmployeeID], d)
	}
	return out
}

func groupLoans(items []loan.Loan) map[uuid.UUID][]loan.Loan {
	out := make(map[uuid.UUID][]loan.Loan)
	for _, l := range items {
		out[l.EmployeeID] = append(out[l.EmployeeID], l)
	}
	return out
}
