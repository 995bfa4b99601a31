package intake

import (
	"fmt"
	"time"

	"github.com/wetreat/intake/internal/platform/report"
)

const (
	createdAtLayout = "1/2/2006, 3:04:05 PM"
	signatureLine   = "Physician Signature: ________________________________"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BuildReport lays out rec as a report document. Created At is shown in loc.
// Empty and NULL values are left empty for the renderer's placeholder.
func BuildReport(rec *PatientRecord, loc *time.Location) report.Document {
	if loc == nil {
		loc = time.UTC
	}

	return report.Document{
		Subject: fmt.Sprintf("Patient report %d", rec.ID),
		Date:    rec.CreatedAt,
		Sections: []report.Section{
			{
				Heading: "Patient’s Demographics",
				Blocks: []report.Block{
					report.Field{Label: "Full Name", Value: rec.FullName},
					report.Field{Label: "Email", Value: rec.Email},
					report.Field{Label: "Date of Birth", Value: rec.DOB},
					report.Field{Label: "Patient ID", Value: rec.PatientID},
					report.Field{Label: "Created At", Value: rec.CreatedAt.In(loc).Format(createdAtLayout)},
				},
			},
			{
				Heading: "Medical History",
				Blocks: []report.Block{
					report.Field{Label: "Symptoms", Value: rec.Symptoms},
					report.Field{Label: "Medical History", Value: rec.MedicalHistory},
					report.Field{Label: "Notes", Value: rec.Notes},
					report.List{Label: "Medical Documents and Imaging URLs:", Items: rec.DocumentURLs()},
				},
			},
			{
				Heading: "Consultation",
				Blocks: []report.Block{
					report.Field{Label: "Physician’s Name", Value: deref(rec.PhysicianName)},
					report.Field{Label: "Physician’s Email", Value: deref(rec.PhysicianEmail)},
					report.Field{Label: "Consultation Date", Value: deref(rec.ConsultationDate)},
					report.Field{Label: "Recommendations", Value: deref(rec.Recommendations)},
				},
			},
		},
		Footer: signatureLine,
	}
}

// ReportFilename is the download name for a record's report.
func ReportFilename(id int64) string {
	return fmt.Sprintf("patient_%d_report.pdf", id)
}
