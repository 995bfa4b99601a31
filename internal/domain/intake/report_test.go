package intake

import (
	"testing"
	"time"

	"github.com/wetreat/intake/internal/platform/report"
)

func fieldValues(doc report.Document) map[string]string {
	out := make(map[string]string)
	for _, sec := range doc.Sections {
		for _, b := range sec.Blocks {
			if f, ok := b.(report.Field); ok {
				out[f.Label] = f.Value
			}
		}
	}
	return out
}

func documentList(doc report.Document) report.List {
	for _, sec := range doc.Sections {
		for _, b := range sec.Blocks {
			if l, ok := b.(report.List); ok {
				return l
			}
		}
	}
	return report.List{}
}

func TestBuildReport_Layout(t *testing.T) {
	rec := &PatientRecord{ID: 7, FullName: "Jane Doe", CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
	doc := BuildReport(rec, time.UTC)

	wantHeadings := []string{"Patient’s Demographics", "Medical History", "Consultation"}
	if len(doc.Sections) != len(wantHeadings) {
		t.Fatalf("expected %d sections, got %d", len(wantHeadings), len(doc.Sections))
	}
	for i, h := range wantHeadings {
		if doc.Sections[i].Heading != h {
			t.Errorf("section %d: expected %q, got %q", i, h, doc.Sections[i].Heading)
		}
	}
	if doc.Footer != "Physician Signature: ________________________________" {
		t.Errorf("unexpected footer %q", doc.Footer)
	}
	if !doc.Date.Equal(rec.CreatedAt) {
		t.Errorf("expected document date pinned to created_at, got %v", doc.Date)
	}
}

func TestBuildReport_NullConsultationIsEmpty(t *testing.T) {
	doc := BuildReport(&PatientRecord{ID: 1}, time.UTC)
	values := fieldValues(doc)

	for _, label := range []string{"Physician’s Name", "Physician’s Email", "Consultation Date", "Recommendations"} {
		v, ok := values[label]
		if !ok {
			t.Errorf("missing field %q", label)
			continue
		}
		if v != "" {
			t.Errorf("%q: expected empty value for placeholder, got %q", label, v)
		}
	}
	if items := documentList(doc).Items; len(items) != 0 {
		t.Errorf("expected no document URLs, got %v", items)
	}
}

func TestBuildReport_Values(t *testing.T) {
	name := "Dr. Pop"
	rec := &PatientRecord{
		ID:            3,
		FullName:      "Jane Doe",
		DocumentsURLs: "http://a.com, http://b.com",
		PhysicianName: &name,
		CreatedAt:     time.Date(2024, 3, 1, 21, 5, 9, 0, time.UTC),
	}

	loc, err := time.LoadLocation("Europe/Bucharest")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	values := fieldValues(BuildReport(rec, loc))

	if values["Full Name"] != "Jane Doe" {
		t.Errorf("unexpected full name %q", values["Full Name"])
	}
	if values["Physician’s Name"] != "Dr. Pop" {
		t.Errorf("unexpected physician %q", values["Physician’s Name"])
	}
	if values["Created At"] != "3/1/2024, 11:05:09 PM" {
		t.Errorf("unexpected created at %q", values["Created At"])
	}

	items := documentList(BuildReport(rec, loc)).Items
	if len(items) != 2 || items[0] != "http://a.com" || items[1] != "http://b.com" {
		t.Errorf("unexpected document URLs %v", items)
	}
}

func TestReportFilename(t *testing.T) {
	if got := ReportFilename(42); got != "patient_42_report.pdf" {
		t.Errorf("unexpected filename %q", got)
	}
}
