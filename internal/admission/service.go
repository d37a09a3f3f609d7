package admission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"examportal/internal/auth"
	"examportal/internal/model"
)

var (
	ErrDuplicateEmail     = errors.New("this email is already registered")
	ErrNotFound           = errors.New("not found")
	ErrPasswordMismatch   = errors.New("new passwords do not match")
	ErrWrongPassword      = errors.New("current password incorrect")
	ErrEmptyPassword      = errors.New("new password must not be empty")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ExamDateLayout is the storage format of AdminConfig.ExamDate.
const ExamDateLayout = "2006-01-02"

// Dashboard is everything the admin page shows.
type Dashboard struct {
	Students []model.Student
	Config   model.AdminConfig
	Weekday  string
}

// Service applies the student lifecycle and admin credential rules.
type Service struct {
	repo       *Repository
	bcryptCost int
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, bcryptCost int) *Service {
	return &Service{repo: repo, bcryptCost: bcryptCost}
}

// Register inserts a new student. A duplicate email yields ErrDuplicateEmail and no write.
func (s *Service) Register(ctx context.Context, st model.Student) (model.Student, error) {
	st.Email = strings.TrimSpace(st.Email)
	exists, err := s.repo.EmailExists(ctx, st.Email)
	if err != nil {
		return model.Student{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return model.Student{}, ErrDuplicateEmail
	}
	st.Result, st.Mock = 0, 0
	saved, err := s.repo.InsertStudent(ctx, st)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return model.Student{}, err
		}
		return model.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return saved, nil
}

// LookupResult returns the public result projection or ErrNotFound.
func (s *Service) LookupResult(ctx context.Context, email string) (model.ResultView, error) {
	st, err := s.repo.StudentByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return model.ResultView{}, fmt.Errorf("lookup student: %w", err)
	}
	if st == nil {
		return model.ResultView{}, ErrNotFound
	}
	return model.ResultView{Name: st.Name, ClassName: st.ClassName, Result: st.Result, Mock: st.Mock}, nil
}

// Config returns the singleton exam configuration.
func (s *Service) Config(ctx context.Context) (model.AdminConfig, error) {
	return s.repo.AdminConfig(ctx)
}

// Authenticate verifies admin credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (model.AdminConfig, error) {
	cfg, err := s.repo.AdminConfig(ctx)
	if err != nil {
		return model.AdminConfig{}, err
	}
	if username != cfg.Username || !auth.CheckPassword(cfg.PasswordHash, password) {
		return model.AdminConfig{}, ErrInvalidCredentials
	}
	return cfg, nil
}

// ChangePassword replaces the admin hash after checking confirmation and the current password.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if next == "" {
		return ErrEmptyPassword
	}
	cfg, err := s.repo.AdminConfig(ctx)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(cfg.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, hash)
}

// Dashboard lists students newest first along with the exam config.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list students: %w", err)
	}
	cfg, err := s.repo.AdminConfig(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Students: students, Config: cfg, Weekday: Weekday(cfg.ExamDate)}, nil
}

// Students returns every student, newest first.
func (s *Service) Students(ctx context.Context) ([]model.Student, error) {
	return s.repo.ListStudents(ctx)
}

// UpdateScores edits result, mock and class of one student.
func (s *Service) UpdateScores(ctx context.Context, id int64, sc model.Scores) error {
	ok, err := s.repo.UpdateScores(ctx, id, sc)
	if err != nil {
		return fmt.Errorf("update student %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes one student.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteStudent(ctx, id)
	if err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// UpdateExam sets exam date and venue.
func (s *Service) UpdateExam(ctx context.Context, examDate, venue string) error {
	return s.repo.UpdateExam(ctx, strings.TrimSpace(examDate), strings.TrimSpace(venue))
}

// UpdateLogo records a new logo path relative to the static dir.
func (s *Service) UpdateLogo(ctx context.Context, logoPath string) error {
	return s.repo.UpdateLogo(ctx, logoPath)
}

// Weekday returns the English weekday of a YYYY-MM-DD date, or "" if it does not parse.
func Weekday(examDate string) string {
	t, err := time.Parse(ExamDateLayout, examDate)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}
