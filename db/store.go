package db

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"roster-server-go/models"
)

// Persister loads and saves the whole roster snapshot.
type Persister interface {
	// Load returns the saved snapshot, or models.DefaultSnapshot() when nothing
	// has been saved yet. Unreadable state is reported as ErrCorruptState.
	Load() (models.Snapshot, error)
	// Save replaces the saved snapshot.
	Save(snapshot models.Snapshot) error
}

// Store is the in-memory authority for students and classes. Every successful
// mutation is persisted before it becomes visible; a failed mutation leaves
// the store unchanged.
type Store struct {
	mu        sync.Mutex
	state     models.Snapshot
	issued    map[string]struct{} // every ID loaded or generated by this store
	persister Persister

	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the default uuid-based ID generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithClock replaces time.Now for AddedDate stamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for mutation logs
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open loads the snapshot from p and returns a Store over it.
func Open(p Persister, opts ...Option) (*Store, error) {
	snapshot, err := p.Load()
	if err != nil {
		return nil, err
	}
	return New(snapshot, p, opts...), nil
}

// New creates a Store holding snapshot, saving through p.
func New(snapshot models.Snapshot, p Persister, opts ...Option) *Store {
	s := &Store{
		state:     snapshot.Clone(),
		issued:    make(map[string]struct{}, len(snapshot.Students)),
		persister: p,
		newID:     generateID,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, st := range s.state.Students {
		s.issued[st.ID] = struct{}{}
	}
	return s
}

func generateID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// --- Read operations ---

// Classes returns the class names in insertion order
func (s *Store) Classes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.state.Classes))
	copy(out, s.state.Classes)
	return out
}

// Students returns all student records in insertion order
func (s *Store) Students() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Student, len(s.state.Students))
	copy(out, s.state.Students)
	return out
}

// Snapshot returns a copy of the full state
func (s *Store) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// FindStudent returns the student with the given ID
func (s *Store) FindStudent(id string) (models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfStudent(s.state.Students, id); i >= 0 {
		return s.state.Students[i], nil
	}
	return models.Student{}, newError("FindStudent", ErrNotFound, "student %q not found", id)
}

// --- Class operations ---

// AddClass appends a class name (trimmed). Names are matched case-sensitively.
func (s *Store) AddClass(name string) (string, error) {
	const op = "AddClass"
	name = strings.TrimSpace(name)
	if name == "" {
		return "", newError(op, ErrValidation, "class name is required")
	}
	// names travel as a single URL path segment
	if strings.Contains(name, "/") {
		return "", newError(op, ErrValidation, "class name %q must not contain '/'", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if containsClass(s.state.Classes, name) {
		return "", newError(op, ErrDuplicateClass, "class %q already exists", name)
	}

	next := s.state.Clone()
	next.Classes = append(next.Classes, name)
	if err := s.commit(op, next); err != nil {
		return "", err
	}
	s.logger.Info("class added", "class", name)
	return name, nil
}

// RemoveClass deletes a class name unless a student is enrolled in it.
func (s *Store) RemoveClass(name string) error {
	const op = "RemoveClass"
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.state.Classes {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newError(op, ErrNotFound, "class %q not found", name)
	}
	for _, st := range s.state.Students {
		if st.Class == name {
			return newError(op, ErrClassInUse, "cannot delete %q: students are enrolled in this class", name)
		}
	}

	next := s.state.Clone()
	next.Classes = append(next.Classes[:idx], next.Classes[idx+1:]...)
	if err := s.commit(op, next); err != nil {
		return err
	}
	s.logger.Info("class removed", "class", name)
	return nil
}

// --- Student operations ---

// AddStudent validates fields and appends a new student with a fresh ID and
// the current time as AddedDate.
func (s *Store) AddStudent(fields models.StudentFields) (models.Student, error) {
	const op = "AddStudent"
	s.mu.Lock()
	defer s.mu.Unlock()

	fields = trimFields(fields)
	if err := validateFields(op, fields, s.state.Classes); err != nil {
		return models.Student{}, err
	}

	st := s.build(fields)
	next := s.state.Clone()
	next.Students = append(next.Students, st)
	if err := s.commit(op, next); err != nil {
		return models.Student{}, err
	}
	s.issued[st.ID] = struct{}{}
	s.logger.Info("student added", "id", st.ID, "class", st.Class)
	return st, nil
}

// UpdateStudent replaces every field except ID and AddedDate, keeping the
// record's position.
func (s *Store) UpdateStudent(id string, fields models.StudentFields) (models.Student, error) {
	const op = "UpdateStudent"
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfStudent(s.state.Students, id)
	if idx < 0 {
		return models.Student{}, newError(op, ErrNotFound, "student %q not found", id)
	}
	fields = trimFields(fields)
	if err := validateFields(op, fields, s.state.Classes); err != nil {
		return models.Student{}, err
	}

	next := s.state.Clone()
	st := next.Students[idx]
	st.Name = fields.Name
	st.FatherName = fields.FatherName
	st.Class = fields.Class
	st.Phone = fields.Phone
	st.Address = fields.Address
	next.Students[idx] = st
	if err := s.commit(op, next); err != nil {
		return models.Student{}, err
	}
	s.logger.Info("student updated", "id", id)
	return st, nil
}

// RemoveStudent deletes the student with the given ID. Removing an unknown ID
// is a no-op and reports removed == false.
func (s *Store) RemoveStudent(id string) (removed bool, err error) {
	const op = "RemoveStudent"
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOfStudent(s.state.Students, id)
	if idx < 0 {
		return false, nil
	}
	next := s.state.Clone()
	next.Students = append(next.Students[:idx], next.Students[idx+1:]...)
	if err := s.commit(op, next); err != nil {
		return false, err
	}
	s.logger.Info("student removed", "id", id)
	return true, nil
}

// ImportStudents adds every valid row as a new student and commits them with a
// single save. Invalid rows are skipped and reported.
func (s *Store) ImportStudents(rows []models.ImportRow) ([]models.Student, []models.RowError, error) {
	const op = "ImportStudents"
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		added   []models.Student
		skipped []models.RowError
	)
	next := s.state.Clone()
	for _, row := range rows {
		fields := trimFields(row.Fields)
		if err := validateFields(op, fields, next.Classes); err != nil {
			skipped = append(skipped, models.RowError{Line: row.Line, Reason: Message(err)})
			continue
		}
		st := s.build(fields)
		// reserve now so later rows in this batch can't draw the same ID
		s.issued[st.ID] = struct{}{}
		next.Students = append(next.Students, st)
		added = append(added, st)
	}
	if len(added) == 0 {
		return nil, skipped, nil
	}
	if err := s.commit(op, next); err != nil {
		return nil, nil, err
	}
	s.logger.Info("students imported", "added", len(added), "skipped", len(skipped))
	return added, skipped, nil
}

// --- helpers ---

// commit persists next and, only if that succeeds, makes it the live state.
func (s *Store) commit(op string, next models.Snapshot) error {
	if err := s.persister.Save(next); err != nil {
		s.logger.Error("failed to save roster", "op", op, "error", err)
		return wrapError(op, ErrPersist, "failed to save roster", err)
	}
	s.state = next
	return nil
}

// build creates a student with an ID never issued by this store.
func (s *Store) build(fields models.StudentFields) models.Student {
	id := s.newID()
	for {
		if _, taken := s.issued[id]; !taken && id != "" {
			break
		}
		id = s.newID()
	}
	return models.Student{
		ID:         id,
		Name:       fields.Name,
		FatherName: fields.FatherName,
		Class:      fields.Class,
		Phone:      fields.Phone,
		Address:    fields.Address,
		AddedDate:  s.now().Format(models.AddedDateLayout),
	}
}

func trimFields(f models.StudentFields) models.StudentFields {
	return models.StudentFields{
		Name:       strings.TrimSpace(f.Name),
		FatherName: strings.TrimSpace(f.FatherName),
		Class:      strings.TrimSpace(f.Class),
		Phone:      strings.TrimSpace(f.Phone),
		Address:    strings.TrimSpace(f.Address),
	}
}

func validateFields(op string, f models.StudentFields, classes []string) error {
	if len(classes) == 0 {
		return newError(op, ErrValidation, "please add classes first")
	}
	var missing []string
	if f.Name == "" {
		missing = append(missing, "Name")
	}
	if f.FatherName == "" {
		missing = append(missing, "FatherName")
	}
	if f.Class == "" {
		missing = append(missing, "Class")
	}
	if f.Phone == "" {
		missing = append(missing, "Phone")
	}
	if f.Address == "" {
		missing = append(missing, "Address")
	}
	if len(missing) > 0 {
		return newError(op, ErrValidation, "please fill all required fields: %s", strings.Join(missing, ", "))
	}
	if !containsClass(classes, f.Class) {
		return newError(op, ErrValidation, "class %q does not exist", f.Class)
	}
	return nil
}

func containsClass(classes []string, name string) bool {
	for _, c := range classes {
		if c == name {
			return true
		}
	}
	return false
}

func indexOfStudent(students []models.Student, id string) int {
	for i, st := range students {
		if st.ID == id {
			return i
		}
	}
	return -1
}
