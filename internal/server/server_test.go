package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/sandaran/internal/apperr"
	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/db/dbtest"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/filter"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/comment"
	"github.com/terraconstructs/sandaran/internal/services/document"
	"github.com/terraconstructs/sandaran/internal/services/emergency"
	"github.com/terraconstructs/sandaran/internal/services/iam"
	"github.com/terraconstructs/sandaran/internal/services/logistic"
	"github.com/terraconstructs/sandaran/internal/services/project"
	"github.com/terraconstructs/sandaran/internal/services/report"
	"github.com/terraconstructs/sandaran/internal/services/upload"
	"github.com/terraconstructs/sandaran/internal/services/user"
	"github.com/terraconstructs/sandaran/internal/services/validation"
	"github.com/terraconstructs/sandaran/internal/telemetry"
)

type fakeObjects struct {
	deleted []string
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type testServer struct {
	t        *testing.T
	db       *bun.DB
	handler  http.Handler
	sessions *repository.BunSessionRepository
	metrics  *telemetry.Metrics
	objects  *fakeObjects
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	logger, _ := test.NewNullLogger()

	users := repository.NewBunUserRepository(db)
	sessions := repository.NewBunSessionRepository(db)
	members := repository.NewBunMemberRepository(db)
	reports := repository.NewBunReportRepository(db)
	funds := repository.NewBunEmergencyRepository(db)

	signer, err := auth.NewTokenSigner("test-secret")
	require.NoError(t, err)
	iamSvc, err := iam.NewService(iam.Dependencies{
		Users: users, Sessions: sessions, Signer: signer, Logger: logger,
	}, iam.Options{SessionTTL: time.Hour})
	require.NoError(t, err)

	validator, err := validation.NewPayloadValidator(0)
	require.NoError(t, err)
	filters, err := filter.New(0)
	require.NoError(t, err)
	metrics := telemetry.NewMetrics(nil)

	objects := &fakeObjects{}
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
	})
	uploads := upload.NewService(objects, s3.NewPresignClient(client), upload.Options{Bucket: "sandaran", Prefix: "uploads"})

	handler := NewRouter(RouterOptions{
		Services: Services{
			IAM:       iamSvc,
			Users:     user.NewService(users, iamSvc),
			Projects:  project.NewService(repository.NewBunProjectRepository(db), members, users, funds),
			Reports:   report.NewService(reports).WithObjectStore(uploads, logger),
			Comments:  comment.NewService(repository.NewBunCommentRepository(db), reports),
			Documents: document.NewService(repository.NewBunDocumentRepository(db)).WithObjectStore(uploads, logger),
			Emergency: emergency.NewService(funds, metrics),
			Logistics: logistic.NewService(repository.NewBunLogisticRepository(db)),
			Uploads:   uploads,
		},
		Authorizer: authz.NewAuthorizer(members, authz.WithLogger(logger), authz.WithRecorder(metrics)),
		Validator:  validator,
		Filter:     filters,
		Logger:     logger,
		Metrics:    metrics,
	})

	return &testServer{t: t, db: db, handler: handler, sessions: sessions, metrics: metrics, objects: objects}
}

// login opens a session for u directly in storage and returns its cookie token.
func (s *testServer) login(u *models.User) string {
	s.t.Helper()
	token, hash, err := auth.GenerateSessionToken()
	require.NoError(s.t, err)
	require.NoError(s.t, s.sessions.Create(context.Background(), &models.Session{
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorKind(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apperr.Body](t, rec).Error
}

// fixture is a project with one member per project role plus global accounts.
type fixture struct {
	*testServer
	project  *models.Project
	other    *models.Project
	admin    string
	ceo      string
	mandor   string
	mandor2  string
	arch     string
	finance  string
	outsider string
	pending  string
}

func newFixture(t *testing.T) *fixture {
	s := newTestServer(t)
	f := &fixture{testServer: s}
	f.project = dbtest.Project(t, s.db, "tower")
	f.other = dbtest.Project(t, s.db, "bridge")

	member := func(email string, role auth.ProjectRole) string {
		u := dbtest.User(t, s.db, email, auth.RoleUser)
		dbtest.Member(t, s.db, u.ID, f.project.ID, role)
		return s.login(u)
	}
	f.mandor = member("mandor@example.com", auth.ProjectRoleMandor)
	f.mandor2 = member("mandor2@example.com", auth.ProjectRoleMandor)
	f.arch = member("arch@example.com", auth.ProjectRoleArchitect)
	f.finance = member("finance@example.com", auth.ProjectRoleFinance)

	f.admin = s.login(dbtest.User(t, s.db, "admin@example.com", auth.RoleAdmin))
	f.ceo = s.login(dbtest.User(t, s.db, "ceo@example.com", auth.RoleCEO))
	f.outsider = s.login(dbtest.User(t, s.db, "outsider@example.com", auth.RoleUser))
	f.pending = s.login(dbtest.User(t, s.db, "pending@example.com", auth.RoleNone))
	return f
}

func (f *fixture) path(suffix string) string {
	return "/api/projects/" + f.project.ID + suffix
}

func reportBody() map[string]any {
	return map[string]any{
		"reportDate":      "2026-10-01",
		"taskDescription": "pour slab level 3",
		"progressPercent": 40,
		"weather":         "sunny",
		"totalWorkers":    12,
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	s.do(http.MethodGet, "/api/projects", "", nil)

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sandaran_http_requests_total")
	assert.Contains(t, rec.Body.String(), `sandaran_authz_decisions_total{operation="project:list",outcome="UNAUTHENTICATED"} 1`)
}

func TestSessionEndpoint(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		token      string
		wantValid  bool
		wantReason string
	}{
		{"no session", "", false, ReasonNoSession},
		{"unknown token", "deadbeef", false, ReasonNoSession},
		{"pending account", f.pending, false, ReasonInactive},
		{"active member", f.mandor, true, ""},
		{"ceo", f.ceo, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, "/api/auth/session", tt.token, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			body := decode[sessionResponse](t, rec)
			assert.Equal(t, tt.wantValid, body.Valid)
			assert.Equal(t, tt.wantReason, body.Reason)
		})
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	s := newTestServer(t)
	creds := map[string]any{"email": "new@example.com", "password": "correct-horse"}

	rec := s.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name": "New Hire", "email": "new@example.com", "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[models.User](t, rec)
	assert.Equal(t, auth.RoleNone, registered.Role)
	assert.False(t, registered.IsActive)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Again", "email": "NEW@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", map[string]any{"email": "new@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorKind(t, rec))

	rec = s.do(http.MethodPost, "/auth/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[loginResponse](t, rec)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, registered.ID, login.User.ID)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// Pending accounts can log in but the gates keep them out.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	out := httptest.NewRecorder()
	s.handler.ServeHTTP(out, req)
	assert.Equal(t, http.StatusForbidden, out.Code)
	assert.Equal(t, "ACCOUNT_INACTIVE", errorKind(t, out))

	rec = s.do(http.MethodPost, "/auth/logout", cookie.Value, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/auth/session", cookie.Value, nil)
	assert.Equal(t, ReasonNoSession, decode[sessionResponse](t, rec).Reason)
}

func TestAuthorizationMatrix(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		token      string
		method     string
		path       string
		body       any
		wantStatus int
		wantKind   string
	}{
		{"anonymous", "", http.MethodGet, f.path(""), nil, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"pending account", f.pending, http.MethodGet, "/api/projects", nil, http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{"member reads project", f.finance, http.MethodGet, f.path(""), nil, http.StatusOK, ""},
		{"outsider reads project", f.outsider, http.MethodGet, f.path(""), nil, http.StatusForbidden, "NOT_A_MEMBER"},
		{"ceo reads project", f.ceo, http.MethodGet, f.path(""), nil, http.StatusOK, ""},
		{"admin reads other project", f.admin, http.MethodGet, "/api/projects/" + f.other.ID, nil, http.StatusOK, ""},
		{"mandor files report", f.mandor, http.MethodPost, f.path("/reports"), reportBody(), http.StatusCreated, ""},
		{"finance files report", f.finance, http.MethodPost, f.path("/reports"), reportBody(), http.StatusForbidden, "ROLE_NOT_PERMITTED"},
		{"ceo files report", f.ceo, http.MethodPost, f.path("/reports"), reportBody(), http.StatusForbidden, "CEO_READ_ONLY"},
		{"admin files report", f.admin, http.MethodPost, f.path("/reports"), reportBody(), http.StatusCreated, ""},
		{"user creates project", f.mandor, http.MethodPost, "/api/projects", map[string]any{"name": "X", "slug": "x", "startDate": "2026-01-01"}, http.StatusForbidden, "ADMIN_REQUIRED"},
		{"ceo creates project", f.ceo, http.MethodPost, "/api/projects", map[string]any{"name": "X", "slug": "x", "startDate": "2026-01-01"}, http.StatusForbidden, "CEO_READ_ONLY"},
		{"admin creates project", f.admin, http.MethodPost, "/api/projects", map[string]any{"name": "X", "slug": "x", "startDate": "2026-01-01"}, http.StatusCreated, ""},
		{"duplicate slug", f.admin, http.MethodPost, "/api/projects", map[string]any{"name": "T", "slug": "tower", "startDate": "2026-01-01"}, http.StatusConflict, apperr.KindConflict},
		{"ceo edits own profile", f.ceo, http.MethodPatch, "/api/me", map[string]any{"name": "Chief"}, http.StatusOK, ""},
		{"user lists users", f.mandor, http.MethodGet, "/api/users", nil, http.StatusForbidden, "ADMIN_REQUIRED"},
		{"architect adds document", f.arch, http.MethodPost, f.path("/documents"), map[string]any{
			"fileName": "plan.pdf", "fileType": "DRAWING", "publicId": "uploads/tower/documents/a.pdf",
			"url": "https://cdn.example.com/a.pdf", "fileSize": 1024, "mimeType": "application/pdf",
		}, http.StatusCreated, ""},
		{"mandor adds document", f.mandor, http.MethodPost, f.path("/documents"), map[string]any{
			"fileName": "plan.pdf", "fileType": "DRAWING", "publicId": "uploads/tower/documents/b.pdf",
			"url": "https://cdn.example.com/b.pdf", "fileSize": 1024, "mimeType": "application/pdf",
		}, http.StatusForbidden, "ROLE_NOT_PERMITTED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errorKind(t, rec))
			}
		})
	}
}

func TestProjectListIsScoped(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/projects", f.mandor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[[]models.Project](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, f.project.ID, projects[0].ID)

	rec = f.do(http.MethodGet, "/api/projects", f.ceo, nil)
	assert.Len(t, decode[[]models.Project](t, rec), 2)

	rec = f.do(http.MethodGet, "/api/projects?filter="+urlQuery(`slug == "bridge"`), f.admin, nil)
	projects = decode[[]models.Project](t, rec)
	require.Len(t, projects, 1)
	assert.Equal(t, "bridge", projects[0].Slug)

	rec = f.do(http.MethodGet, "/api/projects?filter="+urlQuery(`slug ==`), f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindValidationFailed, errorKind(t, rec))
}

func TestReportOwnership(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, f.path("/reports"), f.mandor, reportBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.DailyReport](t, rec)
	assert.True(t, strings.HasPrefix(created.Slug, "report-2026-10-01-"))

	reportPath := f.path("/reports/" + created.ID)
	patch := map[string]any{"progressPercent": 55}

	rec = f.do(http.MethodPatch, reportPath, f.mandor2, patch)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NOT_OWNER", errorKind(t, rec))

	rec = f.do(http.MethodPost, f.path("/reports/"+created.ID+"/tasks"), f.arch, map[string]any{"taskName": "rebar"})
	assert.Equal(t, "NOT_OWNER", errorKind(t, rec))

	rec = f.do(http.MethodPatch, reportPath, f.mandor, patch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 55, decode[models.DailyReport](t, rec).ProgressPercent, 0.001)

	rec = f.do(http.MethodPatch, reportPath, f.admin, map[string]any{"weather": "rain"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, f.path("/reports/by-slug/"+created.Slug), f.finance, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The report is invisible through another project's path.
	rec = f.do(http.MethodGet, "/api/projects/"+f.other.ID+"/reports/"+created.ID, f.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorKind(t, rec))

	rec = f.do(http.MethodPost, f.path("/reports/"+created.ID+"/media"), f.mandor, map[string]any{
		"publicId": "uploads/tower/reports/x.jpg", "url": "https://cdn.example.com/x.jpg",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(http.MethodDelete, reportPath, f.mandor2, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = f.do(http.MethodDelete, reportPath, f.mandor, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"uploads/tower/reports/x.jpg"}, f.objects.deleted)
}

func TestReportListing(t *testing.T) {
	f := newFixture(t)

	for _, day := range []string{"2026-10-01", "2026-10-02", "2026-10-03"} {
		body := reportBody()
		body["reportDate"] = day
		if day == "2026-10-02" {
			body["weather"] = "rain"
		}
		rec := f.do(http.MethodPost, f.path("/reports"), f.mandor, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := f.do(http.MethodGet, f.path("/reports?limit=2"), f.finance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[repository.ReportPage](t, rec)
	require.Len(t, page.Reports, 2)
	assert.Equal(t, "2026-10-03", page.Reports[0].ReportDate.Format(time.DateOnly))
	require.NotEmpty(t, page.NextCursor)

	rec = f.do(http.MethodGet, f.path("/reports?limit=2&cursor="+page.NextCursor), f.finance, nil)
	next := decode[repository.ReportPage](t, rec)
	require.Len(t, next.Reports, 1)
	assert.Empty(t, next.NextCursor)

	rec = f.do(http.MethodGet, f.path("/reports?filter="+urlQuery(`weather == "rain"`)), f.ceo, nil)
	filtered := decode[repository.ReportPage](t, rec)
	require.Len(t, filtered.Reports, 1)
	assert.Equal(t, "2026-10-02", filtered.Reports[0].ReportDate.Format(time.DateOnly))

	for _, limit := range []string{"0", "101", "ten"} {
		rec = f.do(http.MethodGet, f.path("/reports?limit="+limit), f.finance, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestCommentsAllowCEO(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, f.path("/reports"), f.mandor, reportBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	reportID := decode[models.DailyReport](t, rec).ID

	rec = f.do(http.MethodPost, f.path("/reports/"+reportID+"/comments"), f.ceo, map[string]any{"content": "looks good"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	commentID := decode[models.ReportComment](t, rec).ID

	rec = f.do(http.MethodPatch, f.path("/comments/"+commentID), f.finance, map[string]any{"content": "hijack"})
	assert.Equal(t, "NOT_OWNER", errorKind(t, rec))

	rec = f.do(http.MethodGet, f.path("/reports/"+reportID+"/comments"), f.finance, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ReportComment](t, rec), 1)

	rec = f.do(http.MethodPost, f.path("/reports/missing/comments"), f.finance, map[string]any{"content": "?"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmergencyFundFlow(t *testing.T) {
	f := newFixture(t)
	fund := f.path("/emergency-fund")

	rec := f.do(http.MethodGet, fund, f.mandor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[models.EmergencyFund](t, rec).CurrentBalance)

	rec = f.do(http.MethodPost, fund+"/requests", f.mandor, map[string]any{"amount": 10, "description": "cement"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, fund+"/balance", f.mandor, map[string]any{"amount": 1000, "description": "seed"})
	assert.Equal(t, "ROLE_NOT_PERMITTED", errorKind(t, rec))

	rec = f.do(http.MethodPost, fund+"/balance", f.finance, map[string]any{"amount": 0, "description": "zero"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindValidationFailed, errorKind(t, rec))

	rec = f.do(http.MethodPost, fund+"/balance", f.finance, map[string]any{"amount": 1000, "description": "seed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 1000, decode[models.EmergencyFund](t, rec).CurrentBalance, 0.001)

	rec = f.do(http.MethodPost, fund+"/requests", f.mandor, map[string]any{"amount": 5000, "description": "crane"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.KindInsufficientBalance, errorKind(t, rec))

	rec = f.do(http.MethodPost, fund+"/requests", f.mandor, map[string]any{"amount": 400, "description": "generator"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tx := decode[models.EmergencyTransaction](t, rec)
	assert.Equal(t, models.TransactionStatus("PENDING"), tx.Status)

	verify := fund + "/transactions/" + tx.ID + "/verify"
	rec = f.do(http.MethodPost, verify, f.finance, map[string]any{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, verify, f.finance, map[string]any{"status": "REJECTED"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperr.KindInvalidState, errorKind(t, rec))

	rec = f.do(http.MethodGet, fund, f.ceo, nil)
	assert.InDelta(t, 600, decode[models.EmergencyFund](t, rec).CurrentBalance, 0.001)

	rec = f.do(http.MethodGet, fund+"/transactions?status=APPROVED", f.arch, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.EmergencyTransaction](t, rec), 2)

	rec = f.do(http.MethodGet, fund+"/transactions?status=LOST", f.arch, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogisticsFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, f.path("/logistics/items"), f.finance, map[string]any{"name": "Cement 50kg", "unit": "sack"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[models.LogisticItem](t, rec)
	assert.True(t, strings.HasPrefix(item.Slug, "cement-50kg-"))

	move := func(kind string, qty float64) *httptest.ResponseRecorder {
		return f.do(http.MethodPost, f.path("/logistics/transactions"), f.mandor, map[string]any{
			"itemId": item.ID, "type": kind, "quantity": qty,
		})
	}
	require.Equal(t, http.StatusCreated, move("IN", 100).Code)
	require.Equal(t, http.StatusCreated, move("OUT", 30).Code)
	assert.Equal(t, http.StatusBadRequest, move("SIDEWAYS", 1).Code)

	rec = f.do(http.MethodPost, f.path("/logistics/transactions"), f.finance, map[string]any{
		"itemId": item.ID, "type": "IN", "quantity": 1,
	})
	assert.Equal(t, "ROLE_NOT_PERMITTED", errorKind(t, rec))

	rec = f.do(http.MethodGet, f.path("/logistics/stock"), f.ceo, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stock := decode[[]models.StockLevel](t, rec)
	require.Len(t, stock, 1)
	assert.InDelta(t, 70, stock[0].Stock, 0.001)

	rec = f.do(http.MethodGet, f.path("/logistics/transactions?type=OUT"), f.arch, nil)
	assert.Len(t, decode[[]models.LogisticTransaction](t, rec), 1)
}

func TestLogisticsStockWithoutOutMovements(t *testing.T) {
	f := newFixture(t)

	createItem := func(name string) models.LogisticItem {
		rec := f.do(http.MethodPost, f.path("/logistics/items"), f.finance, map[string]any{"name": name, "unit": "unit"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[models.LogisticItem](t, rec)
	}

	rebar := createItem("Rebar")
	rec := f.do(http.MethodGet, f.path("/logistics/stock"), f.finance, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stock := decode[[]models.StockLevel](t, rec)
	require.Len(t, stock, 1)
	assert.Equal(t, rebar.ID, stock[0].ItemID)
	assert.Zero(t, stock[0].TotalIn)
	assert.Zero(t, stock[0].TotalOut)
	assert.Zero(t, stock[0].Stock)

	sand := createItem("Sand")
	rec = f.do(http.MethodPost, f.path("/logistics/transactions"), f.mandor, map[string]any{
		"itemId": sand.ID, "type": "IN", "quantity": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, f.path("/logistics/stock"), f.arch, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stock = decode[[]models.StockLevel](t, rec)
	require.Len(t, stock, 2)
	assert.Equal(t, sand.ID, stock[1].ItemID)
	assert.InDelta(t, 5, stock[1].TotalIn, 0.001)
	assert.Zero(t, stock[1].TotalOut)
	assert.InDelta(t, 5, stock[1].Stock, 0.001)
}

func TestUploads(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/uploads/sign", f.mandor, map[string]any{
		"projectSlug": "tower", "type": "reports", "fileName": "site.jpg", "contentType": "image/jpeg",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	signed := decode[upload.SignedUpload](t, rec)
	assert.True(t, strings.HasPrefix(signed.PublicID, "uploads/tower/reports/"))
	assert.True(t, strings.HasSuffix(signed.PublicID, ".jpg"))
	assert.Contains(t, signed.URL, "X-Amz-Signature")

	rec = f.do(http.MethodPost, "/api/uploads/sign", f.ceo, map[string]any{"projectSlug": "tower", "type": "reports"})
	assert.Equal(t, "CEO_READ_ONLY", errorKind(t, rec))

	rec = f.do(http.MethodDelete, "/api/uploads?publicId="+signed.PublicID, f.mandor, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{signed.PublicID}, f.objects.deleted)

	rec = f.do(http.MethodDelete, "/api/uploads", f.mandor, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUserManagement(t *testing.T) {
	f := newFixture(t)
	pending := dbtest.User(t, f.db, "applicant@example.com", auth.RoleNone)

	rec := f.do(http.MethodGet, "/api/users/pending", f.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	emails := []string{}
	for _, u := range decode[[]models.User](t, rec) {
		emails = append(emails, u.Email)
	}
	assert.Contains(t, emails, "applicant@example.com")

	rec = f.do(http.MethodPost, "/api/users/"+pending.ID+"/approve", f.admin, map[string]any{"role": "NONE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/users/"+pending.ID+"/approve", f.admin, map[string]any{"role": "USER"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[models.User](t, rec)
	assert.True(t, approved.IsActive)
	assert.Equal(t, auth.RoleUser, approved.Role)

	rec = f.do(http.MethodPost, "/api/projects/"+f.project.ID+"/members", f.admin, map[string]any{"userId": pending.ID, "role": "FINANCE"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	memberID := decode[models.ProjectMember](t, rec).ID

	rec = f.do(http.MethodPost, "/api/projects/"+f.project.ID+"/members", f.admin, map[string]any{"userId": pending.ID, "role": "MANDOR"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPut, "/api/members/"+memberID, f.admin, map[string]any{"role": "MANDOR"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, auth.ProjectRoleMandor, decode[models.ProjectMember](t, rec).Role)

	// Deactivation applies on the next request of an existing session.
	applicant := f.login(&approved)
	rec = f.do(http.MethodGet, "/api/me", applicant, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/users/"+pending.ID+"/deactivate", f.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/me", applicant, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func urlQuery(s string) string {
	return strings.NewReplacer(" ", "%20", `"`, "%22", "=", "%3D").Replace(s)
}
