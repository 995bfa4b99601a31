package intake

import (
	"strings"
	"time"
)

// PatientRecord maps to the patients table.
type PatientRecord struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FullName         string    `gorm:"column:full_name;not null;default:''" json:"fullName"`
	Email            string    `gorm:"column:email;not null;default:''" json:"email"`
	DOB              string    `gorm:"column:dob;not null;default:''" json:"dob"`
	PatientID        string    `gorm:"column:patient_id;not null;default:'';index" json:"patientId"`
	Symptoms         string    `gorm:"column:symptoms;not null;default:''" json:"symptoms"`
	MedicalHistory   string    `gorm:"column:medical_history;not null;default:''" json:"medicalHistory"`
	Notes            string    `gorm:"column:notes;not null;default:''" json:"notes"`
	DocumentsURLs    string    `gorm:"column:documents_urls;not null;default:''" json:"documentsUrls"`
	PhysicianName    *string   `gorm:"column:physician_name" json:"physicianName"`
	PhysicianEmail   *string   `gorm:"column:physician_email" json:"physicianEmail"`
	ConsultationDate *string   `gorm:"column:consultation_date" json:"consultationDate"`
	Recommendations  *string   `gorm:"column:recommendations" json:"recommendations"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;index;<-:create" json:"createdAt"`
}

func (PatientRecord) TableName() string { return "patients" }

// DocumentURLs splits the comma-delimited document list, trimming whitespace
// and dropping empty entries. Order and duplicates are kept.
func (p *PatientRecord) DocumentURLs() []string {
	var urls []string
	for _, u := range strings.Split(p.DocumentsURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// HasConsultation reports whether a consultation has been recorded.
func (p *PatientRecord) HasConsultation() bool {
	return p.PhysicianName != nil || p.PhysicianEmail != nil || p.ConsultationDate != nil || p.Recommendations != nil
}

// IntakeRequest is the public intake form. Absent fields are stored as "".
type IntakeRequest struct {
	FullName       string `json:"fullName" validate:"max=200"`
	Email          string `json:"email" validate:"max=320"`
	DOB            string `json:"dob" validate:"max=64"`
	PatientID      string `json:"patientId" validate:"max=128"`
	Symptoms       string `json:"symptoms" validate:"max=20000"`
	MedicalHistory string `json:"medicalHistory" validate:"max=20000"`
	Notes          string `json:"notes" validate:"max=20000"`
	DocumentsURLs  string `json:"documentsUrls" validate:"max=20000"`
}

// Record builds the record to insert. Consultation fields stay nil.
func (r *IntakeRequest) Record() *PatientRecord {
	return &PatientRecord{
		FullName:       r.FullName,
		Email:          r.Email,
		DOB:            r.DOB,
		PatientID:      r.PatientID,
		Symptoms:       r.Symptoms,
		MedicalHistory: r.MedicalHistory,
		Notes:          r.Notes,
		DocumentsURLs:  r.DocumentsURLs,
	}
}

// Consultation holds the four consultation fields, always written together.
// Absent fields overwrite the stored value with "".
type Consultation struct {
	PhysicianName    string `json:"physicianName" validate:"max=200"`
	PhysicianEmail   string `json:"physicianEmail" validate:"max=320"`
	ConsultationDate string `json:"consultationDate" validate:"max=64"`
	Recommendations  string `json:"recommendations" validate:"max=20000"`
}
