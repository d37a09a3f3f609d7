package admission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"examportal/internal/model"
	"examportal/internal/store"
)

// Repository persists students and the admin configuration.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// EmailExists reports whether a student already uses email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM students WHERE email = ?`), email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertStudent writes a new student and returns it with its assigned id.
func (r *Repository) InsertStudent(ctx context.Context, s model.Student) (model.Student, error) {
	err := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		INSERT INTO students (name, email, phone, class_name, result, mock)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`), s.Name, s.Email, s.Phone, s.ClassName, s.Result, s.Mock).Scan(&s.ID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Student{}, ErrDuplicateEmail
		}
		return model.Student{}, err
	}
	return s, nil
}

// StudentByEmail returns nil when no student has the email.
func (r *Repository) StudentByEmail(ctx context.Context, email string) (*model.Student, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, name, email, phone, class_name, result, mock
		FROM students
		WHERE email = ?
	`), email)
	var s model.Student
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.ClassName, &s.Result, &s.Mock); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// ListStudents returns every student, newest first.
func (r *Repository) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.Client.QueryContext(ctx, `
		SELECT id, name, email, phone, class_name, result, mock
		FROM students
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.ClassName, &s.Result, &s.Mock); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateScores sets the admin-editable fields and reports whether the row existed.
func (r *Repository) UpdateScores(ctx context.Context, id int64, sc model.Scores) (bool, error) {
	res, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		UPDATE students SET result = ?, mock = ?, class_name = ? WHERE id = ?
	`), sc.Result, sc.Mock, sc.ClassName, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// DeleteStudent removes a student and reports whether the row existed.
func (r *Repository) DeleteStudent(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`DELETE FROM students WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// AdminConfig loads the singleton configuration row.
func (r *Repository) AdminConfig(ctx context.Context) (model.AdminConfig, error) {
	row := r.db.Client.QueryRowContext(ctx, r.db.Rebind(`
		SELECT id, username, password_hash, exam_date, venue, logo_path
		FROM admin_config
		WHERE id = ?
	`), model.AdminID)
	var cfg model.AdminConfig
	if err := row.Scan(&cfg.ID, &cfg.Username, &cfg.PasswordHash, &cfg.ExamDate, &cfg.Venue, &cfg.LogoPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AdminConfig{}, fmt.Errorf("admin config not seeded: %w", ErrNotFound)
		}
		return model.AdminConfig{}, err
	}
	return cfg, nil
}

// UpdateExam sets the exam date and venue.
func (r *Repository) UpdateExam(ctx context.Context, examDate, venue string) error {
	_, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		UPDATE admin_config SET exam_date = ?, venue = ? WHERE id = ?
	`), examDate, venue, model.AdminID)
	return err
}

// UpdateLogo sets the logo path relative to the static dir.
func (r *Repository) UpdateLogo(ctx context.Context, logoPath string) error {
	_, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		UPDATE admin_config SET logo_path = ? WHERE id = ?
	`), logoPath, model.AdminID)
	return err
}

// UpdatePasswordHash replaces the stored admin hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, hash string) error {
	_, err := r.db.Client.ExecContext(ctx, r.db.Rebind(`
		UPDATE admin_config SET password_hash = ? WHERE id = ?
	`), hash, model.AdminID)
	return err
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
