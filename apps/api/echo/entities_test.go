package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/diario/core"
	"github.com/trezcool/diario/core/class"
	"github.com/trezcool/diario/core/enrollment"
	"github.com/trezcool/diario/core/school"
	"github.com/trezcool/diario/core/student"
	"github.com/trezcool/diario/core/user"
	"github.com/trezcool/diario/tests"
)

func Test_schoolApi(t *testing.T) {
	app, ds := setup(t, nil, nil)
	admin := testutil.CreateUser(t, ds.Users(), "Admin", "admin", "admin@diario.test", "", []string{user.RoleAdmin}, true)
	sec := testutil.CreateUser(t, ds.Users(), "Secretary", "sec", "sec@diario.test", "", []string{user.RoleSecretary}, true)
	nobody := testutil.CreateUser(t, ds.Users(), "Nobody", "nobody", "nobody@diario.test", "", nil, true)

	central := testutil.CreateSchool(t, ds.Schools(), "Central School", "central", "Recife")
	north := testutil.CreateSchool(t, ds.Schools(), "North School", "north", "Olinda")

	adminToken, secToken := getToken(t, admin), getToken(t, sec)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/schools", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "role required", path: "/v1/schools", token: getToken(t, nobody), wantCode: http.StatusForbidden},
		{name: "list", path: "/v1/schools", token: secToken, wantCode: http.StatusOK, wantData: marchallPage(t, 2, central, north)},
		{name: "list (trailing slash)", path: "/v1/schools/", token: secToken, wantCode: http.StatusOK, wantData: marchallPage(t, 2, central, north)},
		{name: "filter", path: "/v1/schools?city=Olinda", token: secToken, wantCode: http.StatusOK, wantData: marchallPage(t, 1, north)},
		{name: "search", path: "/v1/schools?search=cent", token: secToken, wantCode: http.StatusOK, wantData: marchallPage(t, 1, central)},
		{name: "ordering", path: "/v1/schools?ordering=-name", token: secToken, wantCode: http.StatusOK, wantData: marchallPage(t, 2, north, central)},
		{name: "retrieve", path: fmt.Sprintf("/v1/schools/%d", north.ID), token: secToken, wantCode: http.StatusOK, wantData: marchallObj(t, north)},
		{
			name: "not found", path: "/v1/schools/999", token: secToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "school not found"}),
		},
		{
			name: "secretary cannot create", method: http.MethodPost, path: "/v1/schools", token: secToken,
			body: []byte(`{"name":"South","code":"south"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "invalid", method: http.MethodPost, path: "/v1/schools", token: adminToken,
			body: []byte(`{"code":"so uth!","phone":"lol"}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":  "this field is required",
				"code":  "only alphanumeric characters and underscores are allowed",
				"phone": "enter a valid phone number",
			}),
		},
		{
			name: "duplicate code", method: http.MethodPost, path: "/v1/schools", token: adminToken,
			body: []byte(`{"name":"Central 2","code":" CENTRAL "}`), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: "school already exists"}),
		},
		{name: "create", method: http.MethodPost, path: "/v1/schools", token: adminToken, body: []byte(`{"name":"South School","code":"south"}`), wantCode: http.StatusCreated},
		{name: "deactivate", method: http.MethodDelete, path: fmt.Sprintf("/v1/schools/%d", north.ID), token: adminToken, wantCode: http.StatusNoContent},
		{name: "active ones", path: "/v1/schools?is_active=true&ordering=name", token: secToken, wantCode: http.StatusOK},
	})

	got, err := ds.Schools().Get(context.Background(), north.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/v1/schools/%d", central.ID), adminToken, []byte(`{"name":"Central High","code":"central","city":"Recife"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated school.School
	unmarshal(t, rec, &updated)
	assert.Equal(t, "Central High", updated.Name)
	assert.True(t, updated.IsActive)
}

func Test_studentApi(t *testing.T) {
	app, ds := setup(t, nil, nil)
	sec := testutil.CreateUser(t, ds.Users(), "Secretary", "sec", "sec@diario.test", "", []string{user.RoleSecretary}, true)
	teach := testutil.CreateUser(t, ds.Users(), "Teacher", "teach", "teach@diario.test", "", []string{user.RoleTeacher}, true)
	sch := testutil.CreateSchool(t, ds.Schools(), "Central School", "central", "Recife")
	ana := testutil.CreateStudent(t, ds.Students(), sch.ID, "Ana Lima", "2024001", true)

	secToken, teachToken := getToken(t, sec), getToken(t, teach)
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")

	runHTTPTests(t, app, []httpTest{
		{name: "teacher reads", path: "/v1/students", token: teachToken, wantCode: http.StatusOK, wantData: marchallPage(t, 1, ana)},
		{
			name: "teacher cannot write", method: http.MethodPost, path: "/v1/students", token: teachToken,
			body: []byte(`{}`), wantCode: http.StatusForbidden,
		},
		{
			name: "personal section required", method: http.MethodPost, path: "/v1/students", token: secToken,
			body:     []byte(fmt.Sprintf(`{"school_id":%d,"name":"Bruno","registration_number":"2024002","birth_date":%q}`, sch.ID, future)),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"birth_date": "date cannot be in the future"}),
		},
		{
			name: "guardian name required with guardian contact", method: http.MethodPost, path: "/v1/students", token: secToken,
			body:     []byte(fmt.Sprintf(`{"school_id":%d,"name":"Bruno","registration_number":"2024002","birth_date":"2013-02-01","guardian_phone":"+55 81 99999-0000"}`, sch.ID)),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"guardian_name": "this field is required"}),
		},
		{
			name: "unknown school", method: http.MethodPost, path: "/v1/students", token: secToken,
			body:     []byte(`{"school_id":999,"name":"Bruno","registration_number":"2024002","birth_date":"2013-02-01"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"school_id": "school not found"}),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/students", token: secToken,
			body:     []byte(fmt.Sprintf(`{"school_id":%d,"name":"Bruno Reis","registration_number":"2024002","birth_date":"2013-02-01","gender":"male"}`, sch.ID)),
			wantCode: http.StatusCreated,
		},
		{name: "search", path: "/v1/students?search=reis", token: teachToken, wantCode: http.StatusOK},
	})

	page, err := ds.Students().List(context.Background(), core.ListQuery{Search: "reis", Page: 1, PageSize: core.DefaultPageSize})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	bruno := page.Items[0]
	assert.Equal(t, "Bruno Reis", bruno.Name)
	assert.Equal(t, "2013-02-01", bruno.BirthDate.String())
	assert.True(t, bruno.IsActive)

	runHTTPTests(t, app, []httpTest{
		{
			name: "duplicate registration number", method: http.MethodPut, path: fmt.Sprintf("/v1/students/%d", bruno.ID), token: secToken,
			body:     []byte(fmt.Sprintf(`{"school_id":%d,"name":"Bruno Reis","registration_number":"2024001","birth_date":"2013-02-01"}`, sch.ID)),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "student already exists"}),
		},
		{name: "deactivate", method: http.MethodDelete, path: fmt.Sprintf("/v1/students/%d", bruno.ID), token: secToken, wantCode: http.StatusNoContent},
		{name: "active only", path: "/v1/students?is_active=true", token: teachToken, wantCode: http.StatusOK, wantData: marchallPage(t, 1, ana)},
	})
}

func Test_classApi(t *testing.T) {
	app, ds := setup(t, nil, nil)
	sec := testutil.CreateUser(t, ds.Users(), "Secretary", "sec", "sec@diario.test", "", []string{user.RoleSecretary}, true)
	secToken := getToken(t, sec)
	sch := testutil.CreateSchool(t, ds.Schools(), "Central School", "central", "Recife")
	year := time.Now().Year()

	newClass := func(schoolID int64, shift string, capacity int) []byte {
		return marchallObj(t, class.NewClass{
			SchoolID: schoolID, Name: "5th Grade A", Grade: "5", Shift: shift, Capacity: capacity, SchoolYear: year,
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "invalid", method: http.MethodPost, path: "/v1/classes", token: secToken,
			body: newClass(sch.ID, "night", 0), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"shift":    "shift must be one of: morning, afternoon, evening, full",
				"capacity": "this field is required",
			}),
		},
		{
			name: "unknown school", method: http.MethodPost, path: "/v1/classes", token: secToken,
			body: newClass(999, class.ShiftMorning, 2), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"school_id": "school not found"}),
		},
	})

	req, rec := newAuthRequest(http.MethodPost, "/v1/classes", secToken, newClass(sch.ID, class.ShiftMorning, 2))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cls class.Class
	unmarshal(t, rec, &cls)
	assert.True(t, cls.IsActive)

	ana := testutil.CreateStudent(t, ds.Students(), sch.ID, "Ana Lima", "2024001", true)
	bruno := testutil.CreateStudent(t, ds.Students(), sch.ID, "Bruno Reis", "2024002", true)
	carla := testutil.CreateStudent(t, ds.Students(), sch.ID, "Carla Dias", "2024003", true)
	gone := testutil.CreateStudent(t, ds.Students(), sch.ID, "Gone Student", "2024004", false)

	enroll := func(std student.Student) []byte {
		return marchallObj(t, enrollment.NewEnrollment{StudentID: std.ID, ClassID: cls.ID})
	}
	enrollPath := "/v1/enrollments"
	classPath := fmt.Sprintf("/v1/classes/%d", cls.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "enroll Bruno", method: http.MethodPost, path: enrollPath, token: secToken, body: enroll(bruno), wantCode: http.StatusCreated},
		{name: "enroll Ana", method: http.MethodPost, path: enrollPath, token: secToken, body: enroll(ana), wantCode: http.StatusCreated},
		{
			name: "already enrolled", method: http.MethodPost, path: enrollPath, token: secToken, body: enroll(ana),
			wantCode: http.StatusConflict,
		},
		{
			name: "inactive student", method: http.MethodPost, path: enrollPath, token: secToken, body: enroll(gone),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": "student is inactive"}),
		},
		{
			name: "class full", method: http.MethodPost, path: enrollPath, token: secToken, body: enroll(carla),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "class is full (2/2)"}),
		},
		{
			name: "roster", path: classPath + "/roster", token: secToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, []enrollment.RosterEntry{{StudentID: ana.ID, Name: "Ana Lima"}, {StudentID: bruno.ID, Name: "Bruno Reis"}}),
		},
		{
			name: "roster of unknown class", path: "/v1/classes/999/roster", token: secToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "class not found"}),
		},
		{name: "enrollments of the class", path: fmt.Sprintf("%s?class_id=%d&status=active", enrollPath, cls.ID), token: secToken, wantCode: http.StatusOK},
	})

	page, err := ds.Enrollments().List(context.Background(), core.ListQuery{
		Filters: map[string]string{"student_id": strconv.FormatInt(bruno.ID, 10)},
		Page:    1, PageSize: core.DefaultPageSize,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	bEnroll := page.Items[0]
	assert.Equal(t, year, bEnroll.SchoolYear)
	enrollDetail := fmt.Sprintf("%s/%d", enrollPath, bEnroll.ID)

	runHTTPTests(t, app, []httpTest{
		{name: "transfer Bruno", method: http.MethodPut, path: enrollDetail, token: secToken, body: []byte(`{"status":"transferred"}`), wantCode: http.StatusOK},
		{
			name: "terminal status is final", method: http.MethodPut, path: enrollDetail, token: secToken, body: []byte(`{"status":"active"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"status": "cannot change status from transferred to active"}),
		},
		{
			name: "roster after transfer", path: classPath + "/roster", token: secToken, wantCode: http.StatusOK,
			wantData: marchallObj(t, []enrollment.RosterEntry{{StudentID: ana.ID, Name: "Ana Lima"}}),
		},
		{name: "room for Carla", method: http.MethodPost, path: enrollPath, token: secToken, body: enroll(carla), wantCode: http.StatusCreated},
		{name: "deactivate class", method: http.MethodDelete, path: classPath, token: secToken, wantCode: http.StatusNoContent},
		{
			name: "inactive class", method: http.MethodPost, path: enrollPath, token: secToken, body: enroll(bruno),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"class_id": "class is inactive"}),
		},
	})

	got, err := ds.Classes().Get(context.Background(), cls.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
