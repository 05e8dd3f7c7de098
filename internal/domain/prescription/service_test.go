package prescription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rheumacare/portal/internal/platform/gateway"
)

func newService(handler http.HandlerFunc) (*Service, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewService(gateway.New(srv.URL, 5*time.Second)), srv
}

func TestCreate_RoundTripKeepsLineCount(t *testing.T) {
	// The fake backend echoes the record back with an id, the way the real
	// one does.
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		var p Prescription
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decode: %v", err)
		}
		p.ID = "rx_123"
		p.CreatedAt = "2026-08-27T10:15:00+00:00"
		_ = json.NewEncoder(w).Encode(p)
	})
	defer srv.Close()

	f := NewForm("dr_prakashini")
	f.OpNo = "OP1001"
	f.PatientName = "John Smith"
	f.Diagnosis = "RA"
	f.Rows[0].Line = DrugLine{DrugName: "FOLITRAX", Dosage: "10mg", Frequency: "1-0-1", Duration: "4", DurationUnit: "Weeks"}
	f.AddRow()
	f.Rows[1].Line = DrugLine{DrugName: "HCQS", Dosage: "200mg", Frequency: "0-0-1", Duration: "4", DurationUnit: "Weeks"}
	f.AddRow() // left blank on purpose

	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	created, err := svc.Create(context.Background(), "tok", f.Payload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "rx_123" {
		t.Errorf("id = %q", created.ID)
	}
	if got, want := len(created.Drugs), len(f.ValidLines()); got != want {
		t.Errorf("round-trip drug count = %d, want %d", got, want)
	}
}

func TestByOp_DecodesPrescriptionsKey(t *testing.T) {
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prescriptions/by-op/OP1001" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"prescriptions":[{"id":"rx_1","op_no":"OP1001","patient_name":"John Smith","diagnosis":"RA","drugs":[]}]}`))
	})
	defer srv.Close()

	records, err := svc.ByOp(context.Background(), "tok", "OP1001")
	if err != nil {
		t.Fatalf("by-op: %v", err)
	}
	if len(records) != 1 || records[0].PatientName != "John Smith" {
		t.Errorf("records = %+v", records)
	}
}

func TestGet_TolerantOfLegacyKeys(t *testing.T) {
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id":"rx_1","op_no":"OP1001","patient_name":"John Smith",
			"gender":"Male","vitals":"Wt 62",
			"diagnosis":"RA","clinical_history":"","drugs":[],
			"review_after":""
		}`))
	})
	defer srv.Close()

	rec, err := svc.Get(context.Background(), "tok", "rx_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.SexValue() != "Male" {
		t.Errorf("sex = %q", rec.SexValue())
	}
	if rec.VitalsLine() != "Wt 62" {
		t.Errorf("vitals = %q", rec.VitalsLine())
	}
}

func TestDelete_SendsDelete(t *testing.T) {
	var method, path string
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{"message":"Prescription deleted"}`))
	})
	defer srv.Close()

	if err := svc.Delete(context.Background(), "tok", "rx_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if method != http.MethodDelete || path != "/prescriptions/rx_1" {
		t.Errorf("backend saw %s %s", method, path)
	}
}

func TestSearchDrugs(t *testing.T) {
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "fol" {
			t.Errorf("search = %q", got)
		}
		_, _ = w.Write([]byte(`{"drugs":["FOLITRAX","FOL-5MG","FOLLIHAIR"]}`))
	})
	defer srv.Close()

	drugs, err := svc.SearchDrugs(context.Background(), "tok", "fol")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(drugs) != 3 {
		t.Errorf("drugs = %v", drugs)
	}
}

func TestExportExcel_StreamsDownload(t *testing.T) {
	svc, srv := newService(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename=prescriptions_20260827.xlsx`)
		_, _ = w.Write([]byte("xlsx-bytes"))
	})
	defer srv.Close()

	dl, err := svc.ExportExcel(context.Background(), "tok")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer dl.Body.Close()
	if dl.Filename != "prescriptions_20260827.xlsx" {
		t.Errorf("filename = %q", dl.Filename)
	}
}
