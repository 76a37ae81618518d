package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/diario/apps/api/echo"
	"github.com/trezcool/diario/assets"
	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/calendar"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/dashboard"
	"github.com/trezcool/diario/core/diary"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/teacher"
	"github.com/trezcool/diario/core/user"
	emailsvc "github.com/trezcool/diario/services/email"
	"github.com/trezcool/diario/storage"
	"github.com/trezcool/diario/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// setup returns a Server running on an empty FixtureStore.
// diaryRepo & roster replace the store ones when given.
func setup(t *testing.T, diaryRepo diary.Repository, roster diary.RosterProvider) (*Server, *storage.FixtureStore) {
	t.Helper()

	conf := testutil.Config()
	logger := testutil.NopLogger{}
	ds := storage.NewFixtureStore()
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(assets.FS, assets.EmailTemplatesDir, conf, logger)

	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewServiceMock(ds.Users(), mailSvc, logger, conf)
	schoolSvc := school.NewService(ds.Schools(), validate)
	studentSvc := student.NewService(ds.Students(), ds.Schools(), validate)
	teacherSvc := teacher.NewService(ds.Teachers(), ds.Schools(), ds.Users(), validate)
	classSvc := class.NewService(ds.Classes(), ds.Schools(), ds.Teachers(), validate)
	enrollSvc := enrollment.NewService(ds.Enrollments(), ds.Classes(), ds.Students(), validate)
	calSvc := calendar.NewService(ds.Periods(), ds.Holidays(), ds.Events(), ds.Schools(), validate)

	if diaryRepo == nil {
		diaryRepo = ds.Diary()
	}
	if roster == nil {
		roster = enrollSvc
	}

	return NewServer(&Options{
		Conf:          conf,
		Logger:        logger,
		DataSource:    ds.Kind(),
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		SchoolSvc:     schoolSvc,
		StudentSvc:    studentSvc,
		TeacherSvc:    teacherSvc,
		ClassSvc:      classSvc,
		EnrollmentSvc: enrollSvc,
		DiarySvc:      diary.NewService(diaryRepo, roster, ds.Classes(), validate),
		CalendarSvc:   calSvc,
		DashboardSvc: dashboard.NewService(
			ds.Schools(), ds.Students(), ds.Teachers(), ds.Classes(), ds.Enrollments(), diaryRepo, calSvc,
		),
	}), ds
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallPage[T any](t *testing.T, total int, items ...T) []byte {
	if items == nil {
		items = []T{}
	}
	return marchallObj(t, core.Page[T]{Items: items, Total: total, Page: 1, PageSize: core.DefaultPageSize})
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshal(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
