package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/model"
	"github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/repository"
)

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	year    *model.AcademicYear
	periods map[int64]*model.Bimestre
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[int64]*model.Bimestre)}
}

func (m *mockPeriodRepo) GetActiveYear(_ context.Context) (*model.AcademicYear, error) {
	if m.year == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.year, nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id int64) (*model.Bimestre, error) {
	if p, ok := m.periods[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) ListByYear(_ context.Context, yearID int64) ([]model.Bimestre, error) {
	var out []model.Bimestre
	for _, p := range m.periods {
		if p.AcademicYearID == yearID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockPeriodRepo) SetLocked(_ context.Context, id int64, locked bool) error {
	p, ok := m.periods[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsLocked = locked
	return nil
}

// ── Mock ClassroomRepository ──

type mockClassroomRepo struct {
	classrooms map[int64]*model.Classroom
	profiles   *mockProfileRepo
}

func (m *mockClassroomRepo) GetByID(_ context.Context, id int64) (*model.Classroom, error) {
	if c, ok := m.classrooms[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassroomRepo) ListActive(_ context.Context) ([]model.Classroom, error) {
	var out []model.Classroom
	for _, c := range m.classrooms {
		if c.Active {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockClassroomRepo) ListTutoredIDs(_ context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	var out []int64
	for _, p := range m.profiles.profiles {
		if p.TutorClassroomID != nil && p.Active && !seen[*p.TutorClassroomID] {
			seen[*p.TutorClassroomID] = true
			out = append(out, *p.TutorClassroomID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	err      error
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByClassroom(_ context.Context, classroomID int64) ([]model.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Student
	for _, s := range m.students {
		if s.ClassroomID != nil && *s.ClassroomID == classroomID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (m *mockStudentRepo) CountByClassroom(_ context.Context) (map[int64]int, error) {
	out := make(map[int64]int)
	for _, s := range m.students {
		if s.ClassroomID != nil {
			out[*s.ClassroomID]++
		}
	}
	return out, nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct {
	profiles map[string]*model.Profile
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.Email != nil && strings.EqualFold(*p.Email, email) && p.Active {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetTutorOf(_ context.Context, classroomID int64) (*model.Profile, error) {
	for _, p := range m.profiles {
		if p.IsTutorOf(classroomID) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CurriculumRepository ──

type mockCurriculumRepo struct {
	areas       map[int64]*model.CurricularArea
	assignments map[int64]*model.CourseAssignment
}

func (m *mockCurriculumRepo) ListAreas(_ context.Context) ([]model.CurricularArea, error) {
	var out []model.CurricularArea
	for _, a := range m.areas {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *mockCurriculumRepo) SetAreaActive(_ context.Context, id int64, active bool) error {
	a, ok := m.areas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Active = active
	return nil
}

func (m *mockCurriculumRepo) GetAssignment(_ context.Context, id int64) (*model.CourseAssignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCurriculumRepo) list(keep func(*model.CourseAssignment) bool) []model.CourseAssignment {
	var out []model.CourseAssignment
	for _, a := range m.assignments {
		if a.Area != nil && !a.Area.Active {
			continue
		}
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockCurriculumRepo) ListAssignmentsByProfile(_ context.Context, profileID string) ([]model.CourseAssignment, error) {
	return m.list(func(a *model.CourseAssignment) bool {
		return a.ProfileID != nil && *a.ProfileID == profileID
	}), nil
}

func (m *mockCurriculumRepo) ListAssignmentsByClassroom(_ context.Context, classroomID int64) ([]model.CourseAssignment, error) {
	return m.list(func(a *model.CourseAssignment) bool { return a.ClassroomID == classroomID }), nil
}

func (m *mockCurriculumRepo) ListActiveAssignments(_ context.Context) ([]model.CourseAssignment, error) {
	return m.list(func(*model.CourseAssignment) bool { return true }), nil
}

// ── Mock GradeRepository ──

type gradeKey struct {
	student    string
	competency int64
	bimestre   int64
}

type mockGradeRepo struct {
	grades   map[gradeKey]*model.StudentGrade
	writeErr error
	readErr  error
	updates  int
}

func newMockGradeRepo() *mockGradeRepo {
	return &mockGradeRepo{grades: make(map[gradeKey]*model.StudentGrade)}
}

func (m *mockGradeRepo) put(student string, competency, bimestre int64, grade, conclusion string) {
	g := &model.StudentGrade{StudentID: student, CompetencyID: competency, BimestreID: bimestre, Grade: grade}
	if conclusion != "" {
		g.DescriptiveConclusion = &conclusion
	}
	m.grades[gradeKey{student, competency, bimestre}] = g
}

func (m *mockGradeRepo) ListByStudents(_ context.Context, bimestreID int64, studentIDs []string, competencyIDs []int64) ([]model.StudentGrade, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []model.StudentGrade
	for k, g := range m.grades {
		if k.bimestre != bimestreID || !containsString(studentIDs, k.student) {
			continue
		}
		if competencyIDs != nil && !containsID(competencyIDs, k.competency) {
			continue
		}
		out = append(out, *g)
	}
	return out, nil
}

func (m *mockGradeRepo) Get(_ context.Context, studentID string, competencyID, bimestreID int64) (*model.StudentGrade, error) {
	if g, ok := m.grades[gradeKey{studentID, competencyID, bimestreID}]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGradeRepo) Upsert(_ context.Context, g *model.StudentGrade) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	cp := *g
	m.grades[gradeKey{g.StudentID, g.CompetencyID, g.BimestreID}] = &cp
	return nil
}

func (m *mockGradeRepo) Delete(_ context.Context, studentID string, competencyID, bimestreID int64) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.grades, gradeKey{studentID, competencyID, bimestreID})
	return nil
}

func (m *mockGradeRepo) UpdateConclusion(_ context.Context, studentID string, competencyID, bimestreID int64, conclusion, _ string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if g, ok := m.grades[gradeKey{studentID, competencyID, bimestreID}]; ok {
		c := conclusion
		g.DescriptiveConclusion = &c
		m.updates++
	}
	return nil
}

func (m *mockGradeRepo) CountFilled(_ context.Context, bimestreID int64, studentIDs []string, competencyIDs []int64) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	n := 0
	for k, g := range m.grades {
		if k.bimestre == bimestreID && g.Grade != "" && containsString(studentIDs, k.student) && containsID(competencyIDs, k.competency) {
			n++
		}
	}
	return n, nil
}

func (m *mockGradeRepo) CountByGrade(_ context.Context, bimestreID int64, grade string) (int, error) {
	n := 0
	for k, g := range m.grades {
		if k.bimestre == bimestreID && g.Grade == grade {
			n++
		}
	}
	return n, nil
}

// ── Mock BehaviorRepository ──

type studentPeriodKey struct {
	student  string
	bimestre int64
}

type mockBehaviorRepo struct {
	rows     map[studentPeriodKey]*model.BehaviorGrade
	writeErr error
}

func newMockBehaviorRepo() *mockBehaviorRepo {
	return &mockBehaviorRepo{rows: make(map[studentPeriodKey]*model.BehaviorGrade)}
}

func (m *mockBehaviorRepo) ListByStudents(_ context.Context, bimestreID int64, studentIDs []string) ([]model.BehaviorGrade, error) {
	var out []model.BehaviorGrade
	for k, b := range m.rows {
		if k.bimestre == bimestreID && containsString(studentIDs, k.student) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBehaviorRepo) SetField(_ context.Context, studentID string, bimestreID int64, field repository.BehaviorField, value *string, _ string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	k := studentPeriodKey{studentID, bimestreID}
	row, ok := m.rows[k]
	if !ok {
		row = &model.BehaviorGrade{StudentID: studentID, BimestreID: bimestreID}
		m.rows[k] = row
	}
	switch field {
	case repository.FieldComportamiento:
		row.BehaviorGrade = value
	case repository.FieldValores:
		row.ValuesGrade = value
	}
	return nil
}

func (m *mockBehaviorRepo) CountFilled(_ context.Context, bimestreID int64, studentIDs []string) (int, error) {
	n := 0
	for k, b := range m.rows {
		if k.bimestre == bimestreID && containsString(studentIDs, k.student) {
			n += b.FilledSlots()
		}
	}
	return n, nil
}

// ── Mock FamilyRepository ──

type familyKey struct {
	student    string
	commitment int64
	bimestre   int64
}

type mockFamilyRepo struct {
	commitments []model.FamilyCommitment
	evals       map[familyKey]*model.FamilyEvaluation
	writeErr    error
}

func newMockFamilyRepo() *mockFamilyRepo {
	return &mockFamilyRepo{evals: make(map[familyKey]*model.FamilyEvaluation)}
}

func (m *mockFamilyRepo) ListCommitments(_ context.Context, activeOnly bool) ([]model.FamilyCommitment, error) {
	var out []model.FamilyCommitment
	for _, c := range m.commitments {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockFamilyRepo) ListEvaluations(_ context.Context, bimestreID int64, studentIDs []string) ([]model.FamilyEvaluation, error) {
	var out []model.FamilyEvaluation
	for k, e := range m.evals {
		if k.bimestre == bimestreID && containsString(studentIDs, k.student) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *mockFamilyRepo) Upsert(_ context.Context, e *model.FamilyEvaluation) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	cp := *e
	m.evals[familyKey{e.StudentID, e.CommitmentID, e.BimestreID}] = &cp
	return nil
}

func (m *mockFamilyRepo) Delete(_ context.Context, studentID string, commitmentID, bimestreID int64) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.evals, familyKey{studentID, commitmentID, bimestreID})
	return nil
}

func (m *mockFamilyRepo) CountFilled(_ context.Context, bimestreID int64, studentIDs []string, commitmentIDs []int64) (int, error) {
	n := 0
	for k := range m.evals {
		if k.bimestre == bimestreID && containsString(studentIDs, k.student) && containsID(commitmentIDs, k.commitment) {
			n++
		}
	}
	return n, nil
}

// ── Mock AppreciationRepository ──
// Guarded by a mutex: the draft buffer writes from timer goroutines.

type mockAppreciationRepo struct {
	mu       sync.Mutex
	rows     map[studentPeriodKey]*model.StudentAppreciation
	writeErr error
	upserts  int
	written  chan struct{}
}

func newMockAppreciationRepo() *mockAppreciationRepo {
	return &mockAppreciationRepo{
		rows:    make(map[studentPeriodKey]*model.StudentAppreciation),
		written: make(chan struct{}, 64),
	}
}

func (m *mockAppreciationRepo) put(student string, bimestre int64, comment string, approved *bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := comment
	m.rows[studentPeriodKey{student, bimestre}] = &model.StudentAppreciation{
		StudentID: student, BimestreID: bimestre, Comment: &c, IsApproved: approved,
	}
}

func (m *mockAppreciationRepo) row(student string, bimestre int64) *model.StudentAppreciation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[studentPeriodKey{student, bimestre}]; ok {
		cp := *r
		return &cp
	}
	return nil
}

func (m *mockAppreciationRepo) setWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *mockAppreciationRepo) upsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts
}

// waitWrite blocks until one upsert attempt happened or the timeout hits.
func (m *mockAppreciationRepo) waitWrite(timeout time.Duration) bool {
	select {
	case <-m.written:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (m *mockAppreciationRepo) Get(_ context.Context, studentID string, bimestreID int64) (*model.StudentAppreciation, error) {
	if r := m.row(studentID, bimestreID); r != nil {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAppreciationRepo) List(_ context.Context, f repository.AppreciationFilter) ([]model.StudentAppreciation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StudentAppreciation
	for k, r := range m.rows {
		if k.bimestre != f.BimestreID || !containsString(f.StudentIDs, k.student) {
			continue
		}
		if f.ExcludeDrafts && r.IsApproved == nil {
			continue
		}
		if f.Approved != nil && (r.IsApproved == nil || *r.IsApproved != *f.Approved) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockAppreciationRepo) Upsert(_ context.Context, a *model.StudentAppreciation) error {
	m.mu.Lock()
	defer func() {
		m.mu.Unlock()
		select {
		case m.written <- struct{}{}:
		default:
		}
	}()
	m.upserts++
	if m.writeErr != nil {
		return m.writeErr
	}
	cp := *a
	m.rows[studentPeriodKey{a.StudentID, a.BimestreID}] = &cp
	return nil
}

func (m *mockAppreciationRepo) Count(_ context.Context, bimestreID int64, studentIDs []string, what repository.AppreciationCount) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, r := range m.rows {
		if k.bimestre != bimestreID || !containsString(studentIDs, k.student) {
			continue
		}
		switch what {
		case repository.CountApproved:
			if r.IsApproved != nil && *r.IsApproved {
				n++
			}
		case repository.CountPending:
			if r.IsApproved != nil && !*r.IsApproved {
				n++
			}
		case repository.CountCommented:
			if r.Comment != nil && strings.TrimSpace(*r.Comment) != "" {
				n++
			}
		}
	}
	return n, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// ── test school ──
//
// Year 2026 (id 1) with Bimestre I (id 1, open) and Bimestre II (id 2,
// locked); Bimestre 9 belongs to a closed year.
// Classroom 10 (3ro "B" primaria): students s1, s2; tutor doc-1.
// Classroom 20 (1ro "A" secundaria): student s3; no tutor.
// Course 100: Matemática (competencies 11, 12) in 10, taught by doc-1.
// Course 200: Comunicación (competency 21) in 20, taught by doc-2.
// Commitments 1 and 2 active, 3 inactive.

const (
	docenteTutor = "doc-1"
	docenteOther = "doc-2"
	supervisorID = "sup-1"
	adminID      = "adm-1"
)

type testSchool struct {
	repo          *repository.Repository
	periods       *mockPeriodRepo
	classrooms    *mockClassroomRepo
	students      *mockStudentRepo
	profiles      *mockProfileRepo
	curriculum    *mockCurriculumRepo
	grades        *mockGradeRepo
	behavior      *mockBehaviorRepo
	family        *mockFamilyRepo
	appreciations *mockAppreciationRepo
}

func newTestSchool() *testSchool {
	day := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC) }
	i64 := func(v int64) *int64 { return &v }
	str := func(v string) *string { return &v }

	periods := newMockPeriodRepo()
	periods.year = &model.AcademicYear{ID: 1, Year: 2026, IsActive: true}
	periods.periods[1] = &model.Bimestre{ID: 1, AcademicYearID: 1, Name: "I Bimestre", StartDate: day(3, 9), EndDate: day(5, 8)}
	periods.periods[2] = &model.Bimestre{ID: 2, AcademicYearID: 1, Name: "II Bimestre", StartDate: day(5, 18), EndDate: day(7, 17), IsLocked: true}
	periods.periods[9] = &model.Bimestre{ID: 9, AcademicYearID: 0, Name: "IV Bimestre 2025", StartDate: day(10, 1), EndDate: day(12, 15)}

	profiles := &mockProfileRepo{profiles: map[string]*model.Profile{
		docenteTutor: {ID: docenteTutor, FullName: "Rosa Huamán", Email: str("rosa@colegio.pe"), Role: "docente", Active: true, TutorClassroomID: i64(10)},
		docenteOther: {ID: docenteOther, FullName: "Jorge Vega", Email: str("jorge@colegio.pe"), Role: "docente", Active: true},
		supervisorID: {ID: supervisorID, FullName: "Carmen Díaz", Email: str("carmen@colegio.pe"), Role: "supervisor", Active: true},
		adminID:      {ID: adminID, FullName: "Luis Paredes", Email: str("luis@colegio.pe"), Role: "admin", Active: true},
	}}

	classroom10 := &model.Classroom{ID: 10, Level: "primaria", Grade: "3ro", Section: "B", Active: true}
	classroom20 := &model.Classroom{ID: 20, Level: "secundaria", Grade: "1ro", Section: "A", Active: true}
	classrooms := &mockClassroomRepo{
		classrooms: map[int64]*model.Classroom{10: classroom10, 20: classroom20},
		profiles:   profiles,
	}

	students := &mockStudentRepo{students: map[string]*model.Student{
		"s1": {ID: "s1", FirstName: "Ana", LastName: "Quispe", ClassroomID: i64(10)},
		"s2": {ID: "s2", FirstName: "Luis", LastName: "Mamani", ClassroomID: i64(10)},
		"s3": {ID: "s3", FirstName: "Eva", LastName: "Rojas", ClassroomID: i64(20)},
	}}

	mate := &model.CurricularArea{ID: 1, Name: "Matemática", Level: "primaria", Order: 1, Active: true,
		Competencies: []model.Competency{{ID: 11, AreaID: 1, Name: "Resuelve problemas de cantidad"}, {ID: 12, AreaID: 1, Name: "Resuelve problemas de forma"}}}
	comu := &model.CurricularArea{ID: 2, Name: "Comunicación", Level: "secundaria", Order: 2, Active: true,
		Competencies: []model.Competency{{ID: 21, AreaID: 2, Name: "Lee textos escritos"}}}
	curriculum := &mockCurriculumRepo{
		areas: map[int64]*model.CurricularArea{1: mate, 2: comu},
		assignments: map[int64]*model.CourseAssignment{
			100: {ID: 100, AreaID: 1, ClassroomID: 10, ProfileID: str(docenteTutor), Area: mate, Classroom: classroom10, Profile: profiles.profiles[docenteTutor]},
			200: {ID: 200, AreaID: 2, ClassroomID: 20, ProfileID: str(docenteOther), Area: comu, Classroom: classroom20, Profile: profiles.profiles[docenteOther]},
		},
	}

	family := newMockFamilyRepo()
	family.commitments = []model.FamilyCommitment{
		{ID: 1, Description: "Asiste a las reuniones", Active: true},
		{ID: 2, Description: "Revisa las tareas", Active: true},
		{ID: 3, Description: "Compromiso retirado", Active: false},
	}

	sc := &testSchool{
		periods:       periods,
		classrooms:    classrooms,
		students:      students,
		profiles:      profiles,
		curriculum:    curriculum,
		grades:        newMockGradeRepo(),
		behavior:      newMockBehaviorRepo(),
		family:        family,
		appreciations: newMockAppreciationRepo(),
	}
	sc.repo = &repository.Repository{
		Period:       sc.periods,
		Classroom:    sc.classrooms,
		Student:      sc.students,
		Profile:      sc.profiles,
		Curriculum:   sc.curriculum,
		Grade:        sc.grades,
		Behavior:     sc.behavior,
		Family:       sc.family,
		Appreciation: sc.appreciations,
	}
	return sc
}

func tutorCaller() Caller      { return NewCaller(docenteTutor, "docente") }
func otherDocente() Caller     { return NewCaller(docenteOther, "docente") }
func supervisorCaller() Caller { return NewCaller(supervisorID, "supervisor") }
func adminCaller() Caller      { return NewCaller(adminID, "admin") }
