package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/okian/ekiden/internal/adapters/http/api"
	"github.com/okian/ekiden/internal/adapters/repository/sqlite"
	service "github.com/okian/ekiden/internal/app"
	"github.com/okian/ekiden/internal/auth"
	"github.com/okian/ekiden/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var testNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

type testServer struct {
	t   *testing.T
	svc *service.Service
	mux *http.ServeMux
}

func newTestServer(t *testing.T, opts ...api.Option) *testServer {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "ekiden.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	svc := service.New(
		service.WithStore(store),
		service.WithJWTManager(auth.NewJWTManager("test-secret", time.Hour)),
		service.WithAuthenticator(auth.NewPasswordAuthenticator(store,
			auth.WithInviteCode("club"),
			auth.WithBcryptCost(bcrypt.MinCost),
		)),
		service.WithClock(func() time.Time { return testNow }),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, opts...).Register(context.Background(), mux)
	return &testServer{t: t, svc: svc, mux: mux}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case nil:
	case string:
		buf.WriteString(v)
	default:
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(email, name string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":        email,
		"password":     "long enough",
		"display_name": name,
		"invite_code":  "club",
	})
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: %d %s", email, w.Code, w.Body.String())
	}
	var sess struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &sess)
	return sess.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fields  []struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
	} `json:"fields"`
}

type record struct {
	Rank     int     `json:"rank"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Time     string  `json:"time"`
	TimeMs   int64   `json:"time_ms"`
	Distance float64 `json:"distance"`
	Bucket   string  `json:"bucket"`
	RaceType string  `json:"race_type"`
	Date     string  `json:"date"`
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		s := newTestServer(t)

		Convey("The health endpoint serves metrics", func() {
			w := s.do(http.MethodGet, "/healthz", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("The stats endpoint reports the service", func() {
			w := s.do(http.MethodGet, "/stats", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			decode(t, w, &stats)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("Unknown API paths are JSON 404s", func() {
			w := s.do(http.MethodGet, "/api/nope", "", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			var body errorBody
			decode(t, w, &body)
			So(body.Code, ShouldEqual, "not_found")
		})

		Convey("Wrong methods are rejected", func() {
			w := s.do(http.MethodDelete, "/api/leaderboard", "", nil)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestAuthHandlers(t *testing.T) {
	Convey("Given an API server", t, func() {
		s := newTestServer(t)

		Convey("When a member registers", func() {
			token := s.register("ann@example.com", "Ann")
			So(token, ShouldNotBeEmpty)

			Convey("Then the same email cannot register again", func() {
				w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
					"email": "ANN@example.com", "password": "long enough",
					"display_name": "Ann", "invite_code": "club",
				})
				So(w.Code, ShouldEqual, http.StatusConflict)
			})

			Convey("Then the member can log in", func() {
				w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
					"email": "ann@example.com", "password": "long enough",
				})
				So(w.Code, ShouldEqual, http.StatusOK)
				var sess struct {
					Token     string    `json:"token"`
					ExpiresAt time.Time `json:"expires_at"`
				}
				decode(t, w, &sess)
				So(sess.Token, ShouldNotBeEmpty)
				So(sess.ExpiresAt, ShouldEqual, testNow.Add(time.Hour))
			})

			Convey("Then a wrong password is unauthorized", func() {
				w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
					"email": "ann@example.com", "password": "wrong password",
				})
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When the invite code is wrong", func() {
			w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"email": "eve@example.com", "password": "long enough",
				"display_name": "Eve", "invite_code": "nope",
			})
			So(w.Code, ShouldEqual, http.StatusForbidden)
		})

		Convey("When the password is short", func() {
			w := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"email": "eve@example.com", "password": "short",
				"display_name": "Eve", "invite_code": "club",
			})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(t, w, &body)
			So(body.Code, ShouldEqual, "weak_password")
		})

		Convey("When the body has unknown fields", func() {
			w := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"a@b.c","pass":"x"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestProfileHandlers(t *testing.T) {
	Convey("Given a signed-in member", t, func() {
		s := newTestServer(t)
		token := s.register("ann@example.com", "Ann")

		Convey("The profile requires a token", func() {
			w := s.do(http.MethodGet, "/api/profile", "", nil)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			w = s.do(http.MethodGet, "/api/profile", "garbage", nil)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("The profile starts empty and can be saved", func() {
			w := s.do(http.MethodGet, "/api/profile", token, nil)
			So(w.Code, ShouldEqual, http.StatusOK)

			w = s.do(http.MethodPut, "/api/profile", token, map[string]any{
				"name": "Ann Runner", "gender": "female", "birth_year": 1990,
			})
			So(w.Code, ShouldEqual, http.StatusOK)

			w = s.do(http.MethodGet, "/api/profile", token, nil)
			var p map[string]any
			decode(t, w, &p)
			So(p["name"], ShouldEqual, "Ann Runner")
			So(p["gender"], ShouldEqual, "female")
		})

		Convey("An invalid gender lists the field", func() {
			w := s.do(http.MethodPut, "/api/profile", token, map[string]any{"gender": "robot"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(t, w, &body)
			So(body.Code, ShouldEqual, "validation_error")
			So(body.Fields, ShouldHaveLength, 1)
			So(body.Fields[0].Field, ShouldEqual, "gender")
		})
	})
}

func TestRecordsHandlers(t *testing.T) {
	Convey("Given a signed-in member", t, func() {
		s := newTestServer(t, api.WithMaxImportBytes(256))
		ann := s.register("ann@example.com", "Ann")
		bob := s.register("bob@example.com", "Bob")

		Convey("Submitting requires a token", func() {
			w := s.do(http.MethodPost, "/api/records", "", map[string]any{"time": "0:21:30", "distance": 5})
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When a result is submitted", func() {
			w := s.do(http.MethodPost, "/api/records", ann, map[string]any{
				"time": "0:21:30", "distance": 5, "race_name": "Park run",
			})
			So(w.Code, ShouldEqual, http.StatusCreated)
			var rec record
			decode(t, w, &rec)

			Convey("Then it is returned with defaults and a full time", func() {
				So(rec.ID, ShouldNotBeEmpty)
				So(rec.Time, ShouldEqual, "0:21:30")
				So(rec.TimeMs, ShouldEqual, 1_290_000)
				So(rec.Bucket, ShouldEqual, "5k")
				So(rec.RaceType, ShouldEqual, "road")
				So(rec.Date, ShouldEqual, "2025-06-15")
			})

			Convey("Then the owner can patch it", func() {
				w := s.do(http.MethodPatch, "/api/records/"+rec.ID, ann, map[string]any{"time": "0:20:59.50"})
				So(w.Code, ShouldEqual, http.StatusOK)
				var got record
				decode(t, w, &got)
				So(got.TimeMs, ShouldEqual, 1_259_500)
			})

			Convey("Then another member cannot patch or delete it", func() {
				w := s.do(http.MethodPatch, "/api/records/"+rec.ID, bob, map[string]any{"time": "0:10:00"})
				So(w.Code, ShouldEqual, http.StatusNotFound)
				w = s.do(http.MethodDelete, "/api/records/"+rec.ID, bob, nil)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then the owner can delete it", func() {
				w := s.do(http.MethodDelete, "/api/records/"+rec.ID, ann, nil)
				So(w.Code, ShouldEqual, http.StatusNoContent)
				w = s.do(http.MethodDelete, "/api/records/"+rec.ID, ann, nil)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("Then it shows in the member's own list", func() {
				w := s.do(http.MethodGet, "/api/records/mine", ann, nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []record
				decode(t, w, &rows)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Rank, ShouldEqual, 0)

				w = s.do(http.MethodGet, "/api/records/mine", bob, nil)
				decode(t, w, &rows)
				So(rows, ShouldBeEmpty)
			})

			Convey("Then it shows in the latest results", func() {
				w := s.do(http.MethodGet, "/api/records/latest", "", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []record
				decode(t, w, &rows)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Name, ShouldEqual, "Ann")
			})
		})

		Convey("A malformed time is a format error", func() {
			w := s.do(http.MethodPost, "/api/records", ann, map[string]any{"time": "21:30", "distance": 5})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(t, w, &body)
			So(body.Code, ShouldEqual, "format_error")
		})

		Convey("A repeated idempotency key is acknowledged as a duplicate", func() {
			post := func() *httptest.ResponseRecorder {
				req := httptest.NewRequest(http.MethodPost, "/api/records",
					strings.NewReader(`{"time":"0:40:00","distance":10,"race_name":"Ten"}`))
				req.Header.Set("Authorization", "Bearer "+ann)
				req.Header.Set(api.IdempotencyHeader, "abc")
				w := httptest.NewRecorder()
				s.mux.ServeHTTP(w, req)
				return w
			}
			So(post().Code, ShouldEqual, http.StatusCreated)
			w := post()
			So(w.Code, ShouldEqual, http.StatusOK)
			var ack struct {
				Duplicate bool `json:"duplicate"`
			}
			decode(t, w, &ack)
			So(ack.Duplicate, ShouldBeTrue)
		})

		Convey("An import stores the valid lines and reports the rest", func() {
			w := s.do(http.MethodPost, "/api/records/import", ann, "0:20:00,5,Park run,,,\n1:xx:00,10,Bad,,,\n")
			So(w.Code, ShouldEqual, http.StatusOK)
			var report struct {
				Imported int      `json:"imported"`
				Skipped  int      `json:"skipped"`
				Warnings []string `json:"warnings"`
			}
			decode(t, w, &report)
			So(report.Imported, ShouldEqual, 1)
			So(report.Skipped, ShouldEqual, 1)
			So(report.Warnings[0], ShouldStartWith, "line 2:")
		})

		Convey("An oversized import is rejected", func() {
			body := strings.Repeat("0:20:00,5,Park run,,,\n", 50)
			w := s.do(http.MethodPost, "/api/records/import", ann, body)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})
	})
}

func TestLeaderboardHandlers(t *testing.T) {
	Convey("Given results from two members", t, func() {
		s := newTestServer(t, api.WithLimits(10, 50))
		ann := s.register("ann@example.com", "Ann")
		bob := s.register("bob@example.com", "Bob")
		for _, sub := range []struct {
			token string
			body  map[string]any
		}{
			{ann, map[string]any{"time": "0:22:00", "distance": 5, "race_name": "A", "date": "2025-01-01"}},
			{ann, map[string]any{"time": "0:21:00", "distance": 5, "race_name": "B", "date": "2025-02-01"}},
			{bob, map[string]any{"time": "0:20:00", "distance": 5, "race_name": "C", "date": "2024-03-01"}},
			{bob, map[string]any{"time": "1:35:00", "distance": 21.0975, "race_name": "D", "date": "2025-04-01"}},
		} {
			w := s.do(http.MethodPost, "/api/records", sub.token, sub.body)
			So(w.Code, ShouldEqual, http.StatusCreated)
		}

		Convey("The best 5k board ranks one row per member", func() {
			w := s.do(http.MethodGet, "/api/leaderboard?bucket=5k&mode=best", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			var board struct {
				Bucket string   `json:"bucket"`
				Mode   string   `json:"mode"`
				Rows   []record `json:"rows"`
			}
			decode(t, w, &board)
			So(board.Bucket, ShouldEqual, "5k")
			So(board.Mode, ShouldEqual, "best")
			So(board.Rows, ShouldHaveLength, 2)
			So(board.Rows[0].Rank, ShouldEqual, 1)
			So(board.Rows[0].Name, ShouldEqual, "Bob")
			So(board.Rows[0].Time, ShouldEqual, "20:00")
			So(board.Rows[1].Name, ShouldEqual, "Ann")
			So(board.Rows[1].Time, ShouldEqual, "21:00")
		})

		Convey("The year filter narrows the board", func() {
			w := s.do(http.MethodGet, "/api/leaderboard?bucket=5k&mode=best&year=2025", "", nil)
			var board struct {
				Rows []record `json:"rows"`
			}
			decode(t, w, &board)
			So(board.Rows, ShouldHaveLength, 1)
			So(board.Rows[0].Name, ShouldEqual, "Ann")
		})

		Convey("Sorting by time descending reverses the board", func() {
			w := s.do(http.MethodGet, "/api/leaderboard?bucket=5k&sort=time&dir=desc", "", nil)
			var board struct {
				Rows []record `json:"rows"`
			}
			decode(t, w, &board)
			So(board.Rows, ShouldHaveLength, 3)
			So(board.Rows[0].Time, ShouldEqual, "22:00")
		})

		Convey("Bad parameters are rejected", func() {
			for _, q := range []string{"bucket=3k", "mode=worst", "sort=shoe", "dir=up", "year=abc", "from=2025-13-01", "limit=0"} {
				w := s.do(http.MethodGet, "/api/leaderboard?"+q, "", nil)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("A limit above the maximum is its own error", func() {
			w := s.do(http.MethodGet, "/api/leaderboard?limit=51", "", nil)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(t, w, &body)
			So(body.Code, ShouldEqual, "limit_exceeded")
		})

		Convey("The export is a workbook attachment", func() {
			w := s.do(http.MethodGet, "/api/leaderboard/export.xlsx?bucket=half&mode=best", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "leaderboard-half-best.xlsx")

			f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := f.GetRows(f.GetSheetName(0))
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[1][1], ShouldEqual, "Bob")
		})
	})
}
