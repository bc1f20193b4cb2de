package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/curriculum/internal/adapters/http/api"
	service "github.com/okian/curriculum/internal/app"
	"github.com/okian/curriculum/internal/domain/progress"
	"github.com/okian/curriculum/internal/domain/stats"
	"github.com/okian/curriculum/internal/domain/types"
	"github.com/okian/curriculum/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// failingDeps returns the same error from every operation.
type failingDeps struct {
	err error
}

func (f failingDeps) CreateSession(context.Context) (types.SessionView, error) {
	return types.SessionView{}, f.err
}

func (f failingDeps) Session(context.Context, string) (types.SessionView, error) {
	return types.SessionView{}, f.err
}

func (f failingDeps) Catalog() (types.CatalogView, error) { return types.CatalogView{}, f.err }

func (f failingDeps) Courses(context.Context, string, string) ([]types.CourseView, error) {
	return nil, f.err
}

func (f failingDeps) Course(context.Context, string, string) (types.CourseView, error) {
	return types.CourseView{}, f.err
}

func (f failingDeps) SetStatus(context.Context, string, string, string) (types.MutationResult, error) {
	return types.MutationResult{}, f.err
}

func (f failingDeps) SetGrade(context.Context, string, string, *float64) (types.MutationResult, error) {
	return types.MutationResult{}, f.err
}

func (f failingDeps) Summary(context.Context, string) (stats.Summary, error) {
	return stats.Summary{}, f.err
}

func (f failingDeps) Import(context.Context, string, []byte) (types.ImportResult, error) {
	return types.ImportResult{}, f.err
}

func (f failingDeps) Export(context.Context, string) ([]byte, string, error) {
	return nil, "", f.err
}

func (f failingDeps) Reset(context.Context, string) (stats.Summary, error) {
	return stats.Summary{}, f.err
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps api.Dependencies, sp api.StatsProvider) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, sp).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func startService() *service.Service {
	svc := service.New(
		service.WithWorkerCount(1),
		service.WithLogger(logger.Nop()),
		service.WithClock(func() time.Time { return time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC) }),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func TestServer_Infrastructure(t *testing.T) {
	Convey("Given an API server", t, func() {
		svc := startService()
		defer func() { _ = svc.Stop(context.Background()) }()
		mux := newMux(svc, &mockStatsProvider{stats: map[string]interface{}{"started": true}})

		Convey("Then health reports ok", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then stats come from the provider", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then metrics are exposed", func() {
			do(mux, http.MethodGet, "/healthz", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "curriculum_progress_http_requests_total")
		})

		Convey("Then the catalog is served", func() {
			w := do(mux, http.MethodGet, "/catalog", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var cat types.CatalogView
			decode(w, &cat)
			So(cat.Total, ShouldEqual, 35)
			So(cat.Years, ShouldHaveLength, 5)
		})

		Convey("Then wrong methods are rejected by the mux", func() {
			w := do(mux, http.MethodPost, "/catalog", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_SessionFlow(t *testing.T) {
	Convey("Given a created session", t, func() {
		svc := startService()
		defer func() { _ = svc.Stop(context.Background()) }()
		mux := newMux(svc, svc)

		w := do(mux, http.MethodPost, "/sessions", "")
		So(w.Code, ShouldEqual, http.StatusCreated)
		var sess types.SessionView
		decode(w, &sess)
		So(sess.ID, ShouldNotBeEmpty)
		So(w.Header().Get("Location"), ShouldEqual, "/sessions/"+sess.ID)
		base := "/sessions/" + sess.ID

		Convey("When it is fetched", func() {
			w := do(mux, http.MethodGet, base, "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When enrollable courses are listed", func() {
			w := do(mux, http.MethodGet, base+"/courses?filter=enrollable", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var courses []types.CourseView
			decode(w, &courses)
			So(courses, ShouldHaveLength, 7)
		})

		Convey("When the filter is unknown", func() {
			w := do(mux, http.MethodGet, base+"/courses?filter=todo", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, `"code":"bad_request"`)
		})

		Convey("When a status is set", func() {
			w := do(mux, http.MethodPut, base+"/courses/340101/status", `{"status":"APROBADA"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var res types.MutationResult
			decode(w, &res)
			So(res.Course.Status, ShouldEqual, progress.Approved)
			So(res.Summary.Approved, ShouldEqual, 1)

			Convey("And a grade is set", func() {
				w := do(mux, http.MethodPut, base+"/courses/340101/grade", `{"grade": 9}`)
				So(w.Code, ShouldEqual, http.StatusOK)

				w = do(mux, http.MethodGet, base+"/summary", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				var sum stats.Summary
				decode(w, &sum)
				So(*sum.Average, ShouldEqual, 9)
				So(sum.Percentage, ShouldEqual, 3)
			})

			Convey("And the grade is cleared with null", func() {
				w := do(mux, http.MethodPut, base+"/courses/340101/grade", `{"grade": null}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				var res types.MutationResult
				decode(w, &res)
				So(res.Course.Grade, ShouldBeNil)
			})
		})

		Convey("When edits are invalid", func() {
			So(do(mux, http.MethodPut, base+"/courses/340208/status", `{"status":"REGULAR"}`).Code, ShouldEqual, http.StatusConflict)
			So(do(mux, http.MethodPut, base+"/courses/340101/status", `{"status":"DONE"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, base+"/courses/340101/status", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, base+"/courses/340101/status", `{"status":"REGULAR","extra":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, base+"/courses/340101/grade", `{"grade": 11}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, base+"/courses/340101/grade", `{"grade": "9"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, base+"/courses/340101/grade", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPut, base+"/courses/BADCODE/status", `{"status":"REGULAR"}`).Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/sessions/unknown/summary", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a progress file is imported and exported", func() {
			w := do(mux, http.MethodPost, base+"/import", `{"340101": {"estado": "APROBADA", "nota": 9}, "BADCODE": {"estado": "REGULAR"}}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var res types.ImportResult
			decode(w, &res)
			So(res.Accepted, ShouldEqual, 1)
			So(res.Dropped, ShouldEqual, 1)

			w = do(mux, http.MethodGet, base+"/export", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "progreso-carrera-2025-03-01.json")
			So(w.Body.String(), ShouldEqual, "{\n  \"340101\": {\n    \"estado\": \"APROBADA\",\n    \"nota\": 9\n  }\n}")
		})

		Convey("When a garbage file is imported", func() {
			w := do(mux, http.MethodPost, base+"/import", `{"BADCODE": {"estado": "REGULAR"}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(w.Body.String(), ShouldContainSubstring, `"code":"invalid_format"`)

			w = do(mux, http.MethodPost, base+"/import", `not json`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When progress is reset", func() {
			do(mux, http.MethodPut, base+"/courses/340101/status", `{"status":"APROBADA"}`)
			w := do(mux, http.MethodDelete, base+"/progress", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var sum stats.Summary
			decode(w, &sum)
			So(sum.Approved, ShouldEqual, 0)
			So(sum.Pending, ShouldEqual, 35)
		})
	})
}

func TestServer_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrNotStarted, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
		{service.ErrSessionNotFound, http.StatusNotFound},
		{service.ErrCourseLocked, http.StatusConflict},
	}

	for _, tc := range cases {
		Convey("Given dependencies failing with "+tc.err.Error(), t, func() {
			mux := newMux(failingDeps{err: tc.err}, &mockStatsProvider{})

			So(do(mux, http.MethodGet, "/catalog", "").Code, ShouldEqual, tc.code)
			So(do(mux, http.MethodPost, "/sessions", "").Code, ShouldEqual, tc.code)
			So(do(mux, http.MethodGet, "/sessions/x/export", "").Code, ShouldEqual, tc.code)
			So(do(mux, http.MethodDelete, "/sessions/x/progress", "").Code, ShouldEqual, tc.code)
		})
	}
}
