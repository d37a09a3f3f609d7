package model

// AdminID is the fixed primary key of the singleton admin configuration row.
const AdminID = 1

// AdminConfig is the process-wide exam configuration and admin credential.
type AdminConfig struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	ExamDate     string `json:"exam_date"` // YYYY-MM-DD
	Venue        string `json:"venue"`
	LogoPath     string `json:"logo_path"` // relative to the static dir
}

// Student represents a registered exam candidate.
type Student struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	ClassName string  `json:"class_name"`
	Result    float64 `json:"result"`
	Mock      float64 `json:"mock"`
}

// ResultView is the public projection shown on the result lookup page.
type ResultView struct {
	Name      string  `json:"name"`
	ClassName string  `json:"class_name"`
	Result    float64 `json:"result"`
	Mock      float64 `json:"mock"`
}

// Scores carries the admin-editable fields of a student.
type Scores struct {
	Result    float64
	Mock      float64
	ClassName string
}
