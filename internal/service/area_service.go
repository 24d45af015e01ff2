package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/dto"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
)

var ErrAreaNotFound = errors.New("área curricular no encontrada")

// AreaService curricular areas. An inactive area drops out of teaching
// loads and completion.
type AreaService interface {
	List(ctx context.Context) ([]dto.AreaResponse, error)
	SetActive(ctx context.Context, caller Caller, id int64, active bool) error
}

type areaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAreaService creates an AreaService.
func NewAreaService(repo *repository.Repository, logger *zap.Logger) AreaService {
	return &areaService{repo: repo, logger: logger}
}

func (s *areaService) List(ctx context.Context) ([]dto.AreaResponse, error) {
	areas, err := s.repo.Curriculum.ListAreas(ctx)
	if err != nil {
		s.logger.Error("failed to list areas", zap.Error(err))
		return nil, err
	}
	out := make([]dto.AreaResponse, 0, len(areas))
	for _, a := range areas {
		resp := dto.AreaResponse{
			ID:           a.ID,
			Name:         a.Name,
			Level:        a.Level,
			Order:        a.Order,
			Active:       a.Active,
			Competencies: make([]dto.CompetencyResponse, 0, len(a.Competencies)),
		}
		for _, c := range a.Competencies {
			resp.Competencies = append(resp.Competencies, dto.CompetencyResponse{ID: c.ID, Name: c.Name})
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *areaService) SetActive(ctx context.Context, caller Caller, id int64, active bool) error {
	if !grading.Capabilities(caller.Role, nil).CanManagePeriods {
		return ErrForbiddenRole
	}
	if err := s.repo.Curriculum.SetAreaActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAreaNotFound
		}
		s.logger.Error("failed to toggle area", zap.Int64("area_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("curricular area toggled", zap.Int64("area_id", id), zap.Bool("active", active))
	return nil
}
