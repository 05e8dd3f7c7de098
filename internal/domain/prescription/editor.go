package prescription

import (
	"errors"
	"strings"
)

// ErrLastRow is returned when removal would leave the editor with no rows.
var ErrLastRow = errors.New("cannot remove the last drug row")

// ErrInvalidForm is returned by Validate; nothing is sent to the backend
// when it fires.
var ErrInvalidForm = errors.New("op no, patient name, diagnosis and at least one complete drug line are required")

// Row is one editor line: the drug data plus its transient UI state. Keeping
// them in one struct means the drug list and its editing state can never go
// out of step.
type Row struct {
	Line         DrugLine
	SearchText   string
	DropdownOpen bool
}

// NewRow returns a blank row with the editor defaults.
func NewRow() Row {
	return Row{Line: DrugLine{Frequency: DefaultFrequency, DurationUnit: DefaultDurationUnit}}
}

// Form is the full editor state for one prescription.
type Form struct {
	OpNo            string
	PatientName     string
	Sex             string
	Age             string
	ICDCode         string
	Weight          string
	Height          string
	BP              string
	SpO2            string
	Diagnosis       string
	ClinicalHistory string
	Rows            []Row
	ReviewAfter     string
	Advice          string
	LabTests        string
	DoctorID        string
}

// NewForm returns the create-mode defaults: one blank row and the given
// doctor preselected.
func NewForm(doctorID string) *Form {
	return &Form{
		DoctorID: doctorID,
		Rows:     []Row{NewRow()},
	}
}

// AddRow appends a blank row.
func (f *Form) AddRow() {
	f.Rows = append(f.Rows, NewRow())
}

// RemoveRow deletes row i. The last remaining row cannot be removed.
func (f *Form) RemoveRow(i int) error {
	if len(f.Rows) <= 1 {
		return ErrLastRow
	}
	if i < 0 || i >= len(f.Rows) {
		return errors.New("row index out of range")
	}
	f.Rows = append(f.Rows[:i], f.Rows[i+1:]...)
	return nil
}

// LoadRecord fills the form from an existing record for edit mode. Missing
// values fall back to the editor defaults so legacy records load cleanly.
func (f *Form) LoadRecord(p *Prescription) {
	f.LoadDemographics(p)
	f.Diagnosis = p.Diagnosis
	f.ClinicalHistory = p.ClinicalHistory
	f.ReviewAfter = p.ReviewAfter
	f.Advice = p.Advice
	f.LabTests = p.LabTests
	if p.DoctorID != "" {
		f.DoctorID = p.DoctorID
	}

	if len(p.Drugs) == 0 {
		f.Rows = []Row{NewRow()}
		return
	}
	rows := make([]Row, 0, len(p.Drugs))
	for _, d := range p.Drugs {
		if d.Frequency == "" {
			d.Frequency = DefaultFrequency
		}
		if d.DurationUnit == "" {
			d.DurationUnit = DefaultDurationUnit
		}
		rows = append(rows, Row{Line: d, SearchText: d.DrugName})
	}
	f.Rows = rows
}

// LoadDemographics copies only the patient identity and vitals fields,
// leaving the clinical content and drug rows untouched.
func (f *Form) LoadDemographics(p *Prescription) {
	f.OpNo = p.OpNo
	f.PatientName = p.PatientName
	f.Sex = p.SexValue()
	f.Age = p.Age
	f.ICDCode = p.ICDCode
	f.Weight = p.Weight
	f.Height = p.Height
	f.BP = p.BP
	f.SpO2 = p.SpO2
}

// ValidLines returns the complete drug lines in order. Partial lines are
// dropped without comment, matching the save semantics.
func (f *Form) ValidLines() []DrugLine {
	var lines []DrugLine
	for _, r := range f.Rows {
		if r.Line.Complete() {
			lines = append(lines, r.Line)
		}
	}
	return lines
}

// Validate checks the submit requirements. A failing form must not produce
// a backend call.
func (f *Form) Validate() error {
	if strings.TrimSpace(f.OpNo) == "" ||
		strings.TrimSpace(f.PatientName) == "" ||
		strings.TrimSpace(f.Diagnosis) == "" {
		return ErrInvalidForm
	}
	if len(f.ValidLines()) == 0 {
		return ErrInvalidForm
	}
	return nil
}

// Payload builds the create/update request body from the validated form.
func (f *Form) Payload() *Prescription {
	return &Prescription{
		OpNo:            strings.TrimSpace(f.OpNo),
		PatientName:     strings.TrimSpace(f.PatientName),
		Sex:             f.Sex,
		Age:             f.Age,
		ICDCode:         f.ICDCode,
		Weight:          f.Weight,
		Height:          f.Height,
		BP:              f.BP,
		SpO2:            f.SpO2,
		Diagnosis:       f.Diagnosis,
		ClinicalHistory: f.ClinicalHistory,
		Drugs:           f.ValidLines(),
		ReviewAfter:     f.ReviewAfter,
		Advice:          f.Advice,
		LabTests:        f.LabTests,
		DoctorID:        f.DoctorID,
	}
}
