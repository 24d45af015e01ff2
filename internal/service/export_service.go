package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/pkg/storage"
)

// ── export errors ──

var (
	ErrExportGenerateFail = errors.New("no se pudo generar el archivo Excel")
)

// XLSXContentType is the MIME type of generated workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportFile is a generated workbook. ArchiveKey is set when the file was
// also archived.
type ExportFile struct {
	Filename   string
	Data       *bytes.Buffer
	ArchiveKey string
}

// ExportService report card and consolidated workbooks
type ExportService interface {
	// ReportCard renders the libreta of one student.
	ReportCard(ctx context.Context, caller Caller, periodID int64, studentID string) (*ExportFile, error)
	// ClassroomConsolidated renders students × competencies for a classroom.
	ClassroomConsolidated(ctx context.Context, caller Caller, periodID, classroomID int64) (*ExportFile, error)
}

type exportService struct {
	repo    *repository.Repository
	archive storage.Archive
	logger  *zap.Logger
}

// NewExportService creates an ExportService. archive may be nil.
func NewExportService(repo *repository.Repository, archive storage.Archive, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, archive: archive, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ReportCard
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - title rows: school, period, student, classroom
//   - one block per curricular area: competency | grade | conclusion
//   - tutor block: comportamiento / valores, family commitments
//   - approved appreciation
//   - legend

func (s *exportService) ReportCard(ctx context.Context, caller Caller, periodID int64, studentID string) (*ExportFile, error) {
	if !grading.Capabilities(caller.Role, nil).CanAudit {
		return nil, ErrForbiddenRole
	}
	period, err := loadPeriod(ctx, s.repo, s.logger, periodID)
	if err != nil {
		return nil, err
	}
	data, err := reportCardData(ctx, s.repo, s.logger, caller, period, studentID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Libreta"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 48)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "C", 70)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F3A68"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	missingStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#C00000"},
	})
	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	f.SetCellValue(sheet, "A1", "LIBRETA DE INFORMACIÓN INTEGRAL - "+strings.ToUpper(period.Name))
	f.MergeCell(sheet, "A1", "C1")
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetCellValue(sheet, "A2", "ALUMNO: "+strings.ToUpper(data.Student.FullName))
	f.SetCellValue(sheet, "C2", "GRADO/SECC: "+data.Classroom.Name)

	row := 4
	for _, area := range data.Areas {
		f.SetCellValue(sheet, cell("A", row), strings.ToUpper(area.Name))
		f.SetCellValue(sheet, cell("B", row), "NOTA")
		f.SetCellValue(sheet, cell("C", row), "CONCLUSIÓN DESCRIPTIVA")
		f.SetCellStyle(sheet, cell("A", row), cell("C", row), headerStyle)
		row++
		for _, c := range area.Competencies {
			f.SetCellValue(sheet, cell("A", row), c.Name)
			if c.Grade == "" {
				f.SetCellValue(sheet, cell("B", row), "SIN NOTA")
				f.SetCellStyle(sheet, cell("B", row), cell("B", row), missingStyle)
			} else {
				f.SetCellValue(sheet, cell("B", row), c.Grade)
			}
			f.SetCellValue(sheet, cell("C", row), c.Conclusion)
			f.SetCellStyle(sheet, cell("C", row), cell("C", row), wrapStyle)
			row++
		}
		row++
	}

	f.SetCellValue(sheet, cell("A", row), "TUTORÍA, CONDUCTA Y APRECIACIONES FINALES")
	f.MergeCell(sheet, cell("A", row), cell("C", row))
	f.SetCellStyle(sheet, cell("A", row), cell("C", row), headerStyle)
	row++
	for _, line := range [][2]string{
		{"CONDUCTA Y CONVIVENCIA ESCOLAR", data.Comportamiento},
		{"VALORES Y ACTITUDES ANTE EL ÁREA", data.Valores},
	} {
		f.SetCellValue(sheet, cell("A", row), line[0])
		if line[1] == "" {
			f.SetCellValue(sheet, cell("B", row), "PENDIENTE")
			f.SetCellStyle(sheet, cell("B", row), cell("B", row), missingStyle)
		} else {
			f.SetCellValue(sheet, cell("B", row), line[1])
		}
		row++
	}
	descs := make([]string, 0, len(data.Family))
	for desc := range data.Family {
		descs = append(descs, desc)
	}
	sort.Strings(descs)
	for _, desc := range descs {
		grade := data.Family[desc]
		f.SetCellValue(sheet, cell("A", row), desc)
		if grade == "" {
			grade = "PENDIENTE"
		}
		f.SetCellValue(sheet, cell("B", row), grade)
		row++
	}

	row++
	f.SetCellValue(sheet, cell("A", row), "CONCLUSIÓN DESCRIPTIVA DEL TUTOR")
	f.SetCellStyle(sheet, cell("A", row), cell("A", row), headerStyle)
	row++
	appreciation := ""
	if data.AppreciationState == string(grading.StateApproved) {
		appreciation = data.Appreciation
	}
	f.SetCellValue(sheet, cell("A", row), appreciation)
	f.MergeCell(sheet, cell("A", row), cell("C", row))
	f.SetCellStyle(sheet, cell("A", row), cell("C", row), wrapStyle)
	row += 2

	f.SetCellValue(sheet, cell("A", row), "ESCALA DE CALIFICACIÓN:")
	f.SetCellValue(sheet, cell("A", row+1), grading.ScaleLegend)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write report card", zap.String("student_id", studentID), zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	out := &ExportFile{
		Filename: fmt.Sprintf("libreta_%s_%s.xlsx", fileSafe(data.Student.FullName), fileSafe(period.Name)),
		Data:     buf,
	}
	out.ArchiveKey = s.archiveFile(ctx, period, out)
	return out, nil
}

// ═══════════════════════════════════════════════════════════
// ClassroomConsolidated
// ═══════════════════════════════════════════════════════════

func (s *exportService) ClassroomConsolidated(ctx context.Context, caller Caller, periodID, classroomID int64) (*ExportFile, error) {
	if !grading.Capabilities(caller.Role, nil).CanAudit {
		return nil, ErrForbiddenRole
	}
	period, err := loadPeriod(ctx, s.repo, s.logger, periodID)
	if err != nil {
		return nil, err
	}
	classroom, err := s.repo.Classroom.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassroomNotFound
		}
		s.logger.Error("failed to load classroom", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, err
	}
	students, err := s.repo.Student.ListByClassroom(ctx, classroomID)
	if err != nil {
		s.logger.Error("failed to list students", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, err
	}
	assignments, err := s.repo.Curriculum.ListAssignmentsByClassroom(ctx, classroomID)
	if err != nil {
		s.logger.Error("failed to list courses", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, err
	}

	type column struct {
		course     string
		competency model.Competency
	}
	var columns []column
	var compIDs []int64
	for i := range assignments {
		a := &assignments[i]
		if a.Area == nil {
			continue
		}
		for _, c := range a.Area.Competencies {
			columns = append(columns, column{course: a.CourseName(), competency: c})
			compIDs = append(compIDs, c.ID)
		}
	}

	grades, err := s.repo.Grade.ListByStudents(ctx, periodID, studentIDsOf(students), compIDs)
	if err != nil {
		s.logger.Error("failed to list grades", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, err
	}
	gradeIndex := make(map[grading.CellKey]string, len(grades))
	for _, g := range grades {
		gradeIndex[grading.CellKey{StudentID: g.StudentID, CompetencyID: g.CompetencyID}] = g.Grade
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Consolidado"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "B", 36)
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", classroom.DisplayName(), period.Name))
	f.MergeCell(sheet, "A1", cell(colName(1+len(columns)), 1))

	// two header rows: course, then competency
	f.SetCellValue(sheet, "A2", "N°")
	f.SetCellValue(sheet, "B2", "ESTUDIANTE")
	f.MergeCell(sheet, "A2", "A3")
	f.MergeCell(sheet, "B2", "B3")
	for i, col := range columns {
		name := colName(2 + i)
		f.SetColWidth(sheet, name, name, 14)
		f.SetCellValue(sheet, cell(name, 2), col.course)
		f.SetCellValue(sheet, cell(name, 3), col.competency.Name)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(1+len(columns)), 3), headerStyle)

	for r, st := range students {
		row := 4 + r
		f.SetCellValue(sheet, cell("A", row), r+1)
		f.SetCellValue(sheet, cell("B", row), st.FullName())
		for i, col := range columns {
			g := gradeIndex[grading.CellKey{StudentID: st.ID, CompetencyID: col.competency.ID}]
			if g == "" {
				g = "-"
			}
			f.SetCellValue(sheet, cell(colName(2+i), row), g)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("failed to write consolidated workbook", zap.Int64("classroom_id", classroomID), zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	out := &ExportFile{
		Filename: fmt.Sprintf("consolidado_%s_%s.xlsx", fileSafe(classroom.DisplayName()), fileSafe(period.Name)),
		Data:     buf,
	}
	out.ArchiveKey = s.archiveFile(ctx, period, out)
	return out, nil
}

// archiveFile stores a copy when an archive is configured. Archive
// failures never fail the download.
func (s *exportService) archiveFile(ctx context.Context, period *model.Bimestre, f *ExportFile) string {
	if s.archive == nil {
		return ""
	}
	key := path.Join(fmt.Sprintf("bimestre-%d", period.ID), f.Filename)
	loc, err := s.archive.Put(ctx, key, XLSXContentType, f.Data.Bytes())
	if err != nil {
		s.logger.Warn("failed to archive export", zap.String("key", key), zap.Error(err))
		return ""
	}
	return loc
}

func fileSafe(s string) string {
	r := strings.NewReplacer(" ", "_", "\"", "", "/", "-", ",", "")
	return r.Replace(strings.TrimSpace(s))
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
