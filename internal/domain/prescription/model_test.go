package prescription

import "testing"

func TestVitalsLine(t *testing.T) {
	tests := []struct {
		name string
		p    Prescription
		want string
	}{
		{
			"all fields",
			Prescription{Weight: "62", Height: "158", BP: "120/80", SpO2: "98"},
			"Wt: 62kg | Ht: 158cm | BP: 120/80 | SpO2: 98%",
		},
		{
			"partial fields skip separators",
			Prescription{Weight: "70", BP: "130/85"},
			"Wt: 70kg | BP: 130/85",
		},
		{
			"legacy combined field",
			Prescription{Vitals: "Wt 62, BP normal"},
			"Wt 62, BP normal",
		},
		{
			"split fields win over legacy",
			Prescription{Weight: "62", Vitals: "stale"},
			"Wt: 62kg",
		},
		{"nothing", Prescription{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.VitalsLine(); got != tt.want {
				t.Errorf("VitalsLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSexValue_LegacyGenderFallback(t *testing.T) {
	p := Prescription{Gender: "Female"}
	if got := p.SexValue(); got != "Female" {
		t.Errorf("SexValue() = %q", got)
	}

	p.Sex = "Male"
	if got := p.SexValue(); got != "Male" {
		t.Errorf("SexValue() = %q, current key must win", got)
	}
}

func TestDisplayDate(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"rfc3339", "2026-08-27T10:15:00+00:00", "27-08-2026"},
		{"rfc3339 nano", "2026-08-27T10:15:00.123456+00:00", "27-08-2026"},
		{"bare date", "2026-08-27", "27-08-2026"},
		{"unparseable keeps prefix", "2026-08-27Txyz", "2026-08-27"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Prescription{CreatedAt: tt.in}
			if got := p.DisplayDate(); got != tt.want {
				t.Errorf("DisplayDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDrugLineComplete(t *testing.T) {
	complete := DrugLine{DrugName: "FOLITRAX", Dosage: "10mg", Duration: "4"}
	if !complete.Complete() {
		t.Error("expected line to be complete")
	}

	for _, line := range []DrugLine{
		{Dosage: "10mg", Duration: "4"},
		{DrugName: "FOLITRAX", Duration: "4"},
		{DrugName: "FOLITRAX", Dosage: "10mg"},
		{DrugName: "  ", Dosage: "10mg", Duration: "4"},
		{},
	} {
		if line.Complete() {
			t.Errorf("expected incomplete: %+v", line)
		}
	}
}
