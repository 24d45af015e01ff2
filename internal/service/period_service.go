package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
)

// ── period errors ──

var (
	ErrPeriodNotFound        = errors.New("bimestre no encontrado")
	ErrNoActiveYear          = errors.New("no hay un año académico activo")
	ErrPeriodNotInActiveYear = errors.New("el bimestre no pertenece al año académico activo")
)

// PeriodService grading periods of the active academic year
type PeriodService interface {
	List(ctx context.Context, caller Caller) (*dto.PeriodListResponse, error)
	Current(ctx context.Context, caller Caller) (*dto.PeriodResponse, error)
	Get(ctx context.Context, caller Caller, id int64) (*dto.PeriodResponse, error)
	SetLock(ctx context.Context, caller Caller, id int64, locked bool) (*dto.PeriodResponse, error)
	// CalendarICS renders the periods as an iCalendar feed.
	CalendarICS(ctx context.Context) ([]byte, string, error)
}

type periodService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewPeriodService creates a PeriodService.
func NewPeriodService(repo *repository.Repository, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── List ──────────────────────

func (s *periodService) List(ctx context.Context, caller Caller) (*dto.PeriodListResponse, error) {
	year, periods, err := s.activePeriods(ctx)
	if err != nil {
		return nil, err
	}

	current := currentPeriod(periods, s.now())
	out := &dto.PeriodListResponse{
		AcademicYearID: year.ID,
		Year:           year.Year,
		Periods:        make([]dto.PeriodResponse, 0, len(periods)),
	}
	for i := range periods {
		resp := toPeriodResponse(&periods[i], caller)
		resp.IsCurrent = current != nil && current.ID == periods[i].ID
		out.Periods = append(out.Periods, *resp)
	}
	return out, nil
}

// ────────────────────── Current ──────────────────────

func (s *periodService) Current(ctx context.Context, caller Caller) (*dto.PeriodResponse, error) {
	_, periods, err := s.activePeriods(ctx)
	if err != nil {
		return nil, err
	}
	current := currentPeriod(periods, s.now())
	if current == nil {
		return nil, ErrPeriodNotFound
	}
	resp := toPeriodResponse(current, caller)
	resp.IsCurrent = true
	return resp, nil
}

// ────────────────────── Get ──────────────────────

func (s *periodService) Get(ctx context.Context, caller Caller, id int64) (*dto.PeriodResponse, error) {
	period, err := loadPeriod(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	resp := toPeriodResponse(period, caller)
	resp.IsCurrent = period.Contains(s.now())
	return resp, nil
}

// ────────────────────── SetLock ──────────────────────

func (s *periodService) SetLock(ctx context.Context, caller Caller, id int64, locked bool) (*dto.PeriodResponse, error) {
	if !grading.Capabilities(caller.Role, nil).CanManagePeriods {
		return nil, ErrForbiddenRole
	}
	if _, err := loadPeriod(ctx, s.repo, s.logger, id); err != nil {
		return nil, err
	}

	if err := s.repo.Period.SetLocked(ctx, id, locked); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("failed to toggle period lock", zap.Int64("period_id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("period lock changed",
		zap.Int64("period_id", id),
		zap.Bool("locked", locked),
		zap.String("by", caller.ProfileID),
	)

	return s.Get(ctx, caller, id)
}

// ────────────────────── CalendarICS ──────────────────────

func (s *periodService) CalendarICS(ctx context.Context) ([]byte, string, error) {
	year, periods, err := s.activePeriods(ctx)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Sistema de Calificaciones//Bimestres//ES")
	cal.SetXWRCalName(fmt.Sprintf("Bimestres %d", year.Year))

	stamp := s.now().UTC()
	for _, p := range periods {
		evt := cal.AddEvent(fmt.Sprintf("bimestre-%d@calificaciones", p.ID))
		evt.SetDtStampTime(stamp)
		evt.SetSummary(p.Name)
		if p.IsLocked {
			evt.SetDescription("Bimestre cerrado: no admite cambios")
		} else {
			evt.SetDescription("Bimestre abierto para registro de calificaciones")
		}
		evt.SetAllDayStartAt(p.StartDate)
		// DTEND of an all-day event is exclusive.
		evt.SetAllDayEndAt(p.EndDate.AddDate(0, 0, 1))
	}

	return []byte(cal.Serialize()), fmt.Sprintf("bimestres_%d.ics", year.Year), nil
}

// ────────────────────── helpers ──────────────────────

func (s *periodService) activePeriods(ctx context.Context) (*model.AcademicYear, []model.Bimestre, error) {
	year, err := s.repo.Period.GetActiveYear(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoActiveYear
		}
		s.logger.Error("failed to load active year", zap.Error(err))
		return nil, nil, err
	}
	periods, err := s.repo.Period.ListByYear(ctx, year.ID)
	if err != nil {
		s.logger.Error("failed to list periods", zap.Int64("year_id", year.ID), zap.Error(err))
		return nil, nil, err
	}
	return year, periods, nil
}

// currentPeriod picks the period containing today, falling back to the
// first unlocked one and then to the first one.
func currentPeriod(periods []model.Bimestre, today time.Time) *model.Bimestre {
	if len(periods) == 0 {
		return nil
	}
	for i := range periods {
		if periods[i].Contains(today) {
			return &periods[i]
		}
	}
	for i := range periods {
		if !periods[i].IsLocked {
			return &periods[i]
		}
	}
	return &periods[0]
}

func toPeriodResponse(p *model.Bimestre, caller Caller) *dto.PeriodResponse {
	return &dto.PeriodResponse{
		ID:             p.ID,
		AcademicYearID: p.AcademicYearID,
		Name:           p.Name,
		StartDate:      p.StartDate.Format("2006-01-02"),
		EndDate:        p.EndDate.Format("2006-01-02"),
		IsLocked:       p.IsLocked,
		Permissions:    toPermissions(grading.Capabilities(caller.Role, toGradingPeriod(p))),
	}
}
