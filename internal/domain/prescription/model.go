package prescription

import (
	"strings"
	"time"
)

// Fixed frequency choices shown in the editor. Anything else is entered
// through the custom-frequency modal and travels as free text.
var FrequencyOptions = []string{"0-0-1", "1-0-0", "1-1-1", "1-0-1"}

var DurationUnits = []string{"Days", "Weeks", "Months"}

var SexOptions = []string{"Male", "Female", "Other"}

const (
	DefaultFrequency    = "1-0-1"
	DefaultDurationUnit = "Days"
)

// DrugLine is one row of the Rx table as stored by the backend.
type DrugLine struct {
	DrugName     string `json:"drug_name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	DurationUnit string `json:"duration_unit"`
	Comments     string `json:"comments"`
}

// Complete reports whether the line carries the minimum the backend needs.
// Partial lines are dropped silently on save.
func (d DrugLine) Complete() bool {
	return strings.TrimSpace(d.DrugName) != "" &&
		strings.TrimSpace(d.Dosage) != "" &&
		strings.TrimSpace(d.Duration) != ""
}

// Prescription mirrors the backend record. Older records may carry `gender`
// instead of `sex` and a combined `vitals` string instead of the split
// fields; both legacy keys are kept readable.
type Prescription struct {
	ID              string     `json:"id,omitempty"`
	OpNo            string     `json:"op_no"`
	PatientName     string     `json:"patient_name"`
	Sex             string     `json:"sex,omitempty"`
	Gender          string     `json:"gender,omitempty"`
	Age             string     `json:"age,omitempty"`
	ICDCode         string     `json:"icd_code,omitempty"`
	Weight          string     `json:"weight,omitempty"`
	Height          string     `json:"height,omitempty"`
	BP              string     `json:"bp,omitempty"`
	SpO2            string     `json:"spo2,omitempty"`
	Vitals          string     `json:"vitals,omitempty"`
	Diagnosis       string     `json:"diagnosis"`
	ClinicalHistory string     `json:"clinical_history"`
	Drugs           []DrugLine `json:"drugs"`
	ReviewAfter     string     `json:"review_after"`
	Advice          string     `json:"advice,omitempty"`
	LabTests        string     `json:"lab_tests,omitempty"`
	DoctorID        string     `json:"doctor_id,omitempty"`
	Location        string     `json:"location,omitempty"`
	CreatedAt       string     `json:"created_at,omitempty"`
}

// SexValue prefers the current key, falling back to the legacy one.
func (p *Prescription) SexValue() string {
	if p.Sex != "" {
		return p.Sex
	}
	return p.Gender
}

// DisplayDate renders created_at as dd-MM-yyyy. Unparseable timestamps fall
// back to their date prefix rather than erroring a whole page.
func (p *Prescription) DisplayDate() string {
	if p.CreatedAt == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, p.CreatedAt); err == nil {
			return t.Format("02-01-2006")
		}
	}
	if len(p.CreatedAt) >= 10 {
		return p.CreatedAt[:10]
	}
	return p.CreatedAt
}

// VitalsLine builds the printed vitals summary from whichever split fields
// are present, e.g. "Wt: 62kg | Ht: 158cm | BP: 120/80 | SpO2: 98%".
// Records predating the split fields fall back to their stored string.
func (p *Prescription) VitalsLine() string {
	var parts []string
	if p.Weight != "" {
		parts = append(parts, "Wt: "+p.Weight+"kg")
	}
	if p.Height != "" {
		parts = append(parts, "Ht: "+p.Height+"cm")
	}
	if p.BP != "" {
		parts = append(parts, "BP: "+p.BP)
	}
	if p.SpO2 != "" {
		parts = append(parts, "SpO2: "+p.SpO2+"%")
	}
	if len(parts) == 0 {
		return p.Vitals
	}
	return strings.Join(parts, " | ")
}
