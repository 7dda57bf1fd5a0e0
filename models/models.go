package models

// AddedDateLayout is the timestamp format stored in Student.AddedDate
const AddedDateLayout = "2006-01-02 15:04:05"

// DefaultClasses is the class list seeded when no state has been saved yet
var DefaultClasses = []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th", "10th"}

// Student represents a student record
type Student struct {
	ID         string `json:"ID"`         // Unique, generated at creation, never changes
	Name       string `json:"Name"`       // Student name
	FatherName string `json:"FatherName"` // Father's name
	Class      string `json:"Class"`      // Must name an existing class
	Phone      string `json:"Phone"`
	Address    string `json:"Address"`
	AddedDate  string `json:"AddedDate"` // Set once at creation (AddedDateLayout)
}

// StudentFields holds the editable part of a Student (everything but ID and AddedDate)
type StudentFields struct {
	Name       string `json:"Name"`
	FatherName string `json:"FatherName"`
	Class      string `json:"Class"`
	Phone      string `json:"Phone"`
	Address    string `json:"Address"`
}

// Fields returns the editable fields of the student
func (s Student) Fields() StudentFields {
	return StudentFields{
		Name:       s.Name,
		FatherName: s.FatherName,
		Class:      s.Class,
		Phone:      s.Phone,
		Address:    s.Address,
	}
}

// Snapshot is the full persisted state: every student plus the class list
type Snapshot struct {
	Students []Student `json:"students"`
	Classes  []string  `json:"classes"`
}

// DefaultSnapshot returns the state used on first run
func DefaultSnapshot() Snapshot {
	classes := make([]string, len(DefaultClasses))
	copy(classes, DefaultClasses)
	return Snapshot{Students: []Student{}, Classes: classes}
}

// Clone returns a deep copy so callers can't alias the store's slices
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Students: make([]Student, len(s.Students)),
		Classes:  make([]string, len(s.Classes)),
	}
	copy(out.Students, s.Students)
	copy(out.Classes, s.Classes)
	return out
}

// ImportRow is one data row read from an uploaded roster sheet
type ImportRow struct {
	Line   int // 1-based row number in the sheet
	Fields StudentFields
}

// RowError explains why an imported row was skipped
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}
