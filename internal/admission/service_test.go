package admission

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"examportal/internal/auth"
	"examportal/internal/model"
	"examportal/internal/store"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	ctx := context.Background()
	db, err := store.NewDB(ctx, store.DriverSQLite, filepath.Join(t.TempDir(), "exam.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Seed(ctx, store.SeedAdmin{
		Username: "admin", Password: "admin123", ExamDate: "2025-12-01", Venue: "Online", LogoPath: "logo.png",
	}, func(p string) (string, error) { return auth.HashPassword(p, bcrypt.MinCost) })
	require.NoError(t, err)

	repo := NewRepository(db)
	return NewService(repo, bcrypt.MinCost), repo
}

func ana() model.Student {
	return model.Student{Name: "Ana", Email: "ana@x.io", Phone: "555", ClassName: "10A"}
}

func TestRegisterAssignsIDAndZeroScores(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	st := ana()
	st.Result = 99
	saved, err := svc.Register(ctx, st)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Zero(t, saved.Result)
	assert.Zero(t, saved.Mock)

	view, err := svc.LookupResult(ctx, "ana@x.io")
	require.NoError(t, err)
	assert.Equal(t, model.ResultView{Name: "Ana", ClassName: "10A"}, view)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, ana())
	require.NoError(t, err)

	other := ana()
	other.Name = "Other"
	_, err = svc.Register(ctx, other)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ana", students[0].Name)
}

func TestInsertStudentMapsConstraintViolation(t *testing.T) {
	_, repo := newTestService(t)
	ctx := context.Background()

	_, err := repo.InsertStudent(ctx, ana())
	require.NoError(t, err)
	_, err = repo.InsertStudent(ctx, ana())
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLookupResultUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.LookupResult(context.Background(), "nobody@x.io")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cfg, err := svc.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Online", cfg.Venue)

	_, err = svc.Authenticate(ctx, "admin", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "root", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, "admin123", "a", "b"), ErrPasswordMismatch)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "admin123", "", ""), ErrEmptyPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "wrong", "new", "new"), ErrWrongPassword)

	// rejected attempts leave the old password working
	_, err := svc.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, "admin123", "s3cret", "s3cret"))
	_, err = svc.Authenticate(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "admin", "s3cret")
	assert.NoError(t, err)
}

func TestDashboardOrdersNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		st := ana()
		st.Email = email
		_, err := svc.Register(ctx, st)
		require.NoError(t, err)
	}

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Len(t, d.Students, 3)
	assert.Equal(t, "c@x.io", d.Students[0].Email)
	assert.Equal(t, "a@x.io", d.Students[2].Email)
	assert.Equal(t, "Monday", d.Weekday)
	assert.Equal(t, "2025-12-01", d.Config.ExamDate)
}

func TestUpdateScoresAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Register(ctx, ana())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateScores(ctx, saved.ID, model.Scores{Result: 88.5, Mock: 71, ClassName: "11B"}))
	view, err := svc.LookupResult(ctx, saved.Email)
	require.NoError(t, err)
	assert.Equal(t, model.ResultView{Name: "Ana", ClassName: "11B", Result: 88.5, Mock: 71}, view)

	require.NoError(t, svc.Delete(ctx, saved.ID))
	_, err = svc.LookupResult(ctx, saved.Email)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, saved.ID), ErrNotFound)
	assert.ErrorIs(t, svc.UpdateScores(ctx, saved.ID, model.Scores{}), ErrNotFound)
}

func TestUpdateAndDeleteTouchOneRow(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, ana())
	require.NoError(t, err)
	other := model.Student{Name: "Bo", Email: "bo@x.io", Phone: "556", ClassName: "10B"}
	second, err := svc.Register(ctx, other)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateScores(ctx, first.ID, model.Scores{Result: 64, Mock: 58.5, ClassName: "12C"}))

	got, err := repo.StudentByEmail(ctx, first.Email)
	require.NoError(t, err)
	require.NotNil(t, got)
	want := first
	want.Result, want.Mock, want.ClassName = 64, 58.5, "12C"
	assert.Equal(t, want, *got)

	untouched, err := repo.StudentByEmail(ctx, second.Email)
	require.NoError(t, err)
	require.NotNil(t, untouched)
	assert.Equal(t, second, *untouched)

	require.NoError(t, svc.Delete(ctx, second.ID))
	students, err := svc.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Student{want}, students)
}

func TestUpdateExamAndLogo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateExam(ctx, "2026-01-15", " Hall 3 "))
	require.NoError(t, svc.UpdateLogo(ctx, "uploads/logo.png"))

	cfg, err := svc.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15", cfg.ExamDate)
	assert.Equal(t, "Hall 3", cfg.Venue)
	assert.Equal(t, "uploads/logo.png", cfg.LogoPath)
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, "Monday", Weekday("2025-12-01"))
	assert.Equal(t, "Thursday", Weekday("2026-01-15"))
	assert.Equal(t, "", Weekday("01/12/2025"))
	assert.Equal(t, "", Weekday(""))
}
