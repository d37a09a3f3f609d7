package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"examportal/internal/admission"
	"examportal/internal/admitcard"
	"examportal/internal/auth"
	"examportal/internal/config"
	"examportal/internal/export"
	"examportal/internal/metrics"
	"examportal/internal/model"
	"examportal/internal/store"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilename  = "results.xlsx"
	maxLogoBytes    = 5 << 20
	logoUploadDir   = "uploads"
)

// Handler serves the public portal and the admin dashboard.
type Handler struct {
	cfg     config.App
	db      *store.DB
	redis   *store.Redis
	svc     *admission.Service
	cards   *admitcard.Renderer
	metrics *metrics.Metrics
}

// New builds a Handler over the admission service and admit card renderer.
func New(cfg config.App, db *store.DB, rdb *store.Redis, svc *admission.Service, cards *admitcard.Renderer, m *metrics.Metrics) *Handler {
	return &Handler{cfg: cfg, db: db, redis: rdb, svc: svc, cards: cards, metrics: m}
}

// ---------- Health ----------

// Healthz reports db health, plus redis when it is configured.
func (h *Handler) Healthz(c *gin.Context) {
	dbHealthy := h.db.Ping(c.Request.Context()) == nil
	body := gin.H{"status": "ok", "db": dbHealthy}
	healthy := dbHealthy
	if h.redis.Enabled() {
		redisHealthy := h.redis.Healthy(c.Request.Context())
		body["redis"] = redisHealthy
		healthy = healthy && redisHealthy
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

// ---------- Public pages ----------

// Index renders the landing page with exam details and the registration form.
func (h *Handler) Index(c *gin.Context) {
	cfg, err := h.svc.Config(c.Request.Context())
	if err != nil {
		h.serverError(c, "load config", err)
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Config":  cfg,
		"Weekday": admission.Weekday(cfg.ExamDate),
		"LogoURL": h.logoURL(cfg.LogoPath),
	})
}

type registerForm struct {
	Name      string `form:"name" binding:"required"`
	Email     string `form:"email" binding:"required,email"`
	Phone     string `form:"phone"`
	ClassName string `form:"class" binding:"required"`
}

// Register stores the student and answers with the admit card PDF.
func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.metrics.Registrations.WithLabelValues("invalid").Inc()
		h.message(c, http.StatusBadRequest, "Registration failed", validationMessage(err), "/")
		return
	}

	ctx := c.Request.Context()
	st, err := h.svc.Register(ctx, model.Student{
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		ClassName: form.ClassName,
	})
	if errors.Is(err, admission.ErrDuplicateEmail) {
		h.metrics.Registrations.WithLabelValues("duplicate").Inc()
		h.message(c, http.StatusConflict, "Registration failed", "This email is already registered. Please use another email.", "/")
		return
	}
	if err != nil {
		h.serverError(c, "register student", err)
		return
	}
	h.metrics.Registrations.WithLabelValues("created").Inc()

	cfg, err := h.svc.Config(ctx)
	if err != nil {
		h.serverError(c, "load config", err)
		return
	}
	pdf, err := h.cards.Render(st, cfg)
	if err != nil {
		h.serverError(c, "render admit card", err)
		return
	}
	h.metrics.AdmitCards.WithLabelValues(h.cards.Layout()).Inc()

	c.Header("Content-Disposition", attachment(admitcard.Filename(st.Name)))
	c.Data(http.StatusOK, pdfContentType, pdf)
}

// ResultPage renders the empty result lookup form.
func (h *Handler) ResultPage(c *gin.Context) {
	c.HTML(http.StatusOK, "result.html", gin.H{})
}

// LookupResult shows a student's scores by email, or a "no result" notice.
func (h *Handler) LookupResult(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	data := gin.H{"Email": email, "Searched": true}
	if email == "" {
		c.HTML(http.StatusOK, "result.html", data)
		return
	}
	view, err := h.svc.LookupResult(c.Request.Context(), email)
	switch {
	case errors.Is(err, admission.ErrNotFound):
	case err != nil:
		h.serverError(c, "lookup result", err)
		return
	default:
		data["Result"] = view
	}
	c.HTML(http.StatusOK, "result.html", data)
}

// ---------- Session ----------

// LoginPage renders the admin login form.
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// Login verifies admin credentials and stores a signed token in the session.
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": validationMessage(err), "Username": form.Username})
		return
	}

	admin, err := h.svc.Authenticate(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, admission.ErrInvalidCredentials) {
		h.metrics.Logins.WithLabelValues("rejected").Inc()
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Invalid username or password.", "Username": form.Username})
		return
	}
	if err != nil {
		h.serverError(c, "authenticate", err)
		return
	}

	token, _, err := auth.Issue(admin.Username, auth.RoleAdmin, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.SessionTTL)
	if err != nil {
		h.serverError(c, "issue session token", err)
		return
	}
	session := sessions.Default(c)
	session.Set(auth.SessionTokenKey, token)
	if err := session.Save(); err != nil {
		h.serverError(c, "save session", err)
		return
	}
	h.metrics.Logins.WithLabelValues("accepted").Inc()
	c.Redirect(http.StatusFound, "/admin")
}

// Logout clears the session.
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("logout: save session: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// ---------- Admin ----------

// Dashboard lists students newest first with the exam settings.
func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		h.serverError(c, "load dashboard", err)
		return
	}
	claims, _ := auth.CurrentClaims(c)
	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Students": d.Students,
		"Config":   d.Config,
		"Weekday":  d.Weekday,
		"LogoURL":  h.logoURL(d.Config.LogoPath),
		"Username": claims.Subject,
	})
}

type examForm struct {
	ExamDate string `form:"exam_date" binding:"required"`
	Venue    string `form:"venue" binding:"required"`
}

// UpdateExam sets the exam date and venue.
func (h *Handler) UpdateExam(c *gin.Context) {
	var form examForm
	if err := c.ShouldBind(&form); err != nil {
		h.message(c, http.StatusBadRequest, "Update failed", validationMessage(err), "/admin")
		return
	}
	if err := h.svc.UpdateExam(c.Request.Context(), form.ExamDate, form.Venue); err != nil {
		h.serverError(c, "update exam", err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

// UpdateLogo stores an uploaded image under <static>/uploads as PNG and points the config at it.
func (h *Handler) UpdateLogo(c *gin.Context) {
	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		h.message(c, http.StatusBadRequest, "Upload failed", "logo file is required", "/admin")
		return
	}
	defer file.Close()
	if header.Size > maxLogoBytes {
		h.message(c, http.StatusBadRequest, "Upload failed", "logo is larger than 5 MB", "/admin")
		return
	}
	raw, err := io.ReadAll(io.LimitReader(file, maxLogoBytes+1))
	if err != nil {
		h.serverError(c, "read logo", err)
		return
	}
	data, ok := admitcard.NormaliseLogo(raw)
	if !ok {
		h.message(c, http.StatusBadRequest, "Upload failed", "logo must be a png, jpeg, gif or webp image", "/admin")
		return
	}

	rel := path.Join(logoUploadDir, uuid.NewString()+".png")
	dst := admitcard.LogoFile(h.cfg.StaticDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		h.serverError(c, "create upload dir", err)
		return
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		h.serverError(c, "write logo", err)
		return
	}
	if err := h.svc.UpdateLogo(c.Request.Context(), rel); err != nil {
		h.serverError(c, "update logo", err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

type scoresForm struct {
	Result    float64 `form:"result"`
	Mock      float64 `form:"mock"`
	ClassName string  `form:"class"`
}

// UpdateResult sets result, mock and class of one student.
func (h *Handler) UpdateResult(c *gin.Context) {
	id, ok := h.studentID(c)
	if !ok {
		return
	}
	var form scoresForm
	if err := c.ShouldBind(&form); err != nil {
		h.message(c, http.StatusBadRequest, "Update failed", "result and mock must be numbers", "/admin")
		return
	}
	err := h.svc.UpdateScores(c.Request.Context(), id, model.Scores{Result: form.Result, Mock: form.Mock, ClassName: form.ClassName})
	if err != nil && !errors.Is(err, admission.ErrNotFound) {
		h.serverError(c, "update result", err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

// DeleteStudent removes one student by id.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id, ok := h.studentID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil && !errors.Is(err, admission.ErrNotFound) {
		h.serverError(c, "delete student", err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

type passwordForm struct {
	Current string `form:"current_password"`
	New     string `form:"new_password"`
	Confirm string `form:"confirm_password"`
}

// ChangePassword rotates the admin password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var form passwordForm
	if err := c.ShouldBind(&form); err != nil {
		h.message(c, http.StatusBadRequest, "Password not changed", validationMessage(err), "/admin")
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), form.Current, form.New, form.Confirm)
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/admin")
	case errors.Is(err, admission.ErrPasswordMismatch):
		h.message(c, http.StatusBadRequest, "Password not changed", "New passwords do not match!", "/admin")
	case errors.Is(err, admission.ErrEmptyPassword):
		h.message(c, http.StatusBadRequest, "Password not changed", "New password must not be empty!", "/admin")
	case errors.Is(err, admission.ErrWrongPassword):
		h.message(c, http.StatusBadRequest, "Password not changed", "Current password incorrect!", "/admin")
	default:
		h.serverError(c, "change password", err)
	}
}

// Download serves every student as an XLSX workbook.
func (h *Handler) Download(c *gin.Context) {
	students, err := h.svc.Students(c.Request.Context())
	if err != nil {
		h.serverError(c, "list students", err)
		return
	}
	data, err := export.Students(students)
	if err != nil {
		h.serverError(c, "export students", err)
		return
	}
	h.metrics.Exports.Inc()
	c.Header("Content-Disposition", attachment(exportFilename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ---------- helpers ----------

func (h *Handler) studentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.message(c, http.StatusBadRequest, "Invalid request", "invalid student id", "/admin")
		return 0, false
	}
	return id, true
}

// logoURL returns the public URL of the logo, or "" when the file is absent.
func (h *Handler) logoURL(logoPath string) string {
	file := admitcard.LogoFile(h.cfg.StaticDir, logoPath)
	if file == "" {
		return ""
	}
	if _, err := os.Stat(file); err != nil {
		return ""
	}
	return "/static/" + strings.TrimPrefix(path.Clean("/"+logoPath), "/")
}

func (h *Handler) message(c *gin.Context, status int, title, msg, back string) {
	c.HTML(status, "message.html", gin.H{"Title": title, "Message": msg, "Back": back})
}

func (h *Handler) serverError(c *gin.Context, op string, err error) {
	log.Printf("%s failed (request %s): %v", op, c.GetString("request_id"), err)
	c.String(http.StatusInternalServerError, "internal server error")
}

func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

// validationMessage turns binding errors into a short user-facing sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid form submission"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
