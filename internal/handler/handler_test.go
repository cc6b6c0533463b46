package handler

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/mock"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/court-reservation/internal/booking"
    "github.com/iliyamo/court-reservation/internal/middleware"
    "github.com/iliyamo/court-reservation/internal/model"
    "github.com/iliyamo/court-reservation/internal/repository"
    "github.com/iliyamo/court-reservation/internal/utils"
)

const secret = "handler-secret"

type mockService struct{ mock.Mock }

func (m *mockService) Create(ctx context.Context, req booking.CreateRequest) (*model.Reservation, error) {
    args := m.Called(ctx, req)
    res, _ := args.Get(0).(*model.Reservation)
    return res, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id uint64, req booking.UpdateRequest) (*model.Reservation, error) {
    args := m.Called(ctx, id, req)
    res, _ := args.Get(0).(*model.Reservation)
    return res, args.Error(1)
}

func (m *mockService) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
    args := m.Called(ctx, id)
    res, _ := args.Get(0).(*model.Reservation)
    return res, args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id uint64) error {
    return m.Called(ctx, id).Error(0)
}

func (m *mockService) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
    args := m.Called(ctx, id)
    res, _ := args.Get(0).(*model.Reservation)
    return res, args.Error(1)
}

func (m *mockService) List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
    args := m.Called(ctx, f)
    items, _ := args.Get(0).([]model.Reservation)
    return items, args.Error(1)
}

func (m *mockService) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    args := m.Called(ctx, userID)
    items, _ := args.Get(0).([]model.Reservation)
    return items, args.Error(1)
}

func (m *mockService) ListByCourt(ctx context.Context, courtID uint64, date string) ([]model.Reservation, error) {
    args := m.Called(ctx, courtID, date)
    items, _ := args.Get(0).([]model.Reservation)
    return items, args.Error(1)
}

type mockCourts struct{ mock.Mock }

func (m *mockCourts) GetCourt(ctx context.Context, id uint64) (*model.Court, error) {
    args := m.Called(ctx, id)
    c, _ := args.Get(0).(*model.Court)
    return c, args.Error(1)
}

func (m *mockCourts) ListCourts(ctx context.Context, f repository.CourtFilter) ([]model.Court, error) {
    args := m.Called(ctx, f)
    items, _ := args.Get(0).([]model.Court)
    return items, args.Error(1)
}

func (m *mockCourts) ListTimeSlots(ctx context.Context, courtID uint64) ([]model.TimeSlot, error) {
    args := m.Called(ctx, courtID)
    items, _ := args.Get(0).([]model.TimeSlot)
    return items, args.Error(1)
}

type response struct {
    Success bool            `json:"success"`
    Message string          `json:"message"`
    Data    json.RawMessage `json:"data"`
    Count   *int            `json:"count"`
    Error   string          `json:"error"`
}

// newServer wires the handlers the way the router does; withAuth puts
// JWTAuth in front of the reservation routes.
func newServer(svc *mockService, courts *mockCourts, withAuth bool) *echo.Echo {
    e := echo.New()
    rh := NewReservationHandler(svc, nil, time.Second)
    ch := NewCourtHandler(courts, nil, time.Second)

    g := e.Group("/v1")
    if withAuth {
        g.Use(middleware.JWTAuth(secret))
    }
    g.POST("/reservations", rh.Create)
    g.GET("/reservations", rh.List)
    g.GET("/reservations/:id", rh.Get)
    g.PUT("/reservations/:id", rh.Update)
    g.PUT("/reservations/:id/cancel", rh.Cancel)
    g.DELETE("/reservations/:id", rh.Delete)
    g.GET("/reservations/user/:user_id", rh.ListByUser)
    g.GET("/reservations/court/:court_id", rh.ListByCourt("court_id"))
    g.GET("/courts", ch.List)
    g.GET("/courts/available", ch.Available)
    g.GET("/courts/:id", ch.Get)
    g.GET("/courts/:id/time-slots", ch.TimeSlots)
    g.GET("/courts/:id/reservations", rh.ListByCourt("id"))
    return e
}

func call(t *testing.T, e *echo.Echo, method, path, body, token string) (int, response) {
    t.Helper()
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if token != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    var out response
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
    return rec.Code, out
}

func token(t *testing.T, id uint64, role string) string {
    t.Helper()
    at, err := utils.NewAccessToken(secret, id, role, 5)
    require.NoError(t, err)
    return at.Token
}

func sample() *model.Reservation {
    return &model.Reservation{ID: 5, UserID: 1, CourtID: 10, Date: "2024-06-01", StartTime: "08:00", EndTime: "10:00", Status: model.StatusPending}
}

func TestCreateReservation(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), false)
    want := booking.CreateRequest{UserID: 1, CourtID: 10, Date: "2024-06-01", StartTime: "08:00", EndTime: "10:00"}
    svc.On("Create", mock.Anything, want).Return(sample(), nil).Once()

    code, out := call(t, e, http.MethodPost, "/v1/reservations",
        `{"user_id":1,"court_id":10,"date":"2024-06-01","start_time":"08:00","end_time":"10:00"}`, "")
    assert.Equal(t, http.StatusCreated, code)
    assert.True(t, out.Success)
    assert.Equal(t, "reservation created", out.Message)
    assert.Contains(t, string(out.Data), `"start_time":"08:00"`)
    svc.AssertExpectations(t)
}

func TestCreateReservationErrors(t *testing.T) {
    cases := []struct {
        name    string
        err     error
        code    int
        kind    string
        message string
    }{
        {"validation", &booking.Error{Kind: booking.KindValidation, Message: "date is required"}, http.StatusBadRequest, "validation", "date is required"},
        {"missing user", booking.ErrUserNotFound, http.StatusNotFound, "not_found", "user not found"},
        {"missing court", booking.ErrCourtNotFound, http.StatusNotFound, "not_found", "court not found"},
        {"unavailable", booking.ErrCourtUnavailable, http.StatusBadRequest, "conflict", "court is not available"},
        {"overlap", booking.ErrOverlap, http.StatusBadRequest, "conflict", booking.ErrOverlap.Message},
        {"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "internal", "internal server error"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            svc := new(mockService)
            e := newServer(svc, new(mockCourts), false)
            svc.On("Create", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

            code, out := call(t, e, http.MethodPost, "/v1/reservations", `{"court_id":10}`, "")
            assert.Equal(t, tc.code, code)
            assert.False(t, out.Success)
            assert.Equal(t, tc.kind, out.Error)
            assert.Equal(t, tc.message, out.Message)
            assert.Empty(t, out.Data)
        })
    }
}

func TestCreateReservationBadBody(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), false)

    code, out := call(t, e, http.MethodPost, "/v1/reservations", `{"court_id":"ten"`, "")
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "invalid request body", out.Message)
    svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReservationUsesTokenUser(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), true)
    svc.On("Create", mock.Anything, mock.MatchedBy(func(r booking.CreateRequest) bool { return r.UserID == 3 })).
        Return(sample(), nil).Once()

    code, _ := call(t, e, http.MethodPost, "/v1/reservations", `{"court_id":10}`, token(t, 3, model.RoleUser))
    assert.Equal(t, http.StatusCreated, code)

    code, out := call(t, e, http.MethodPost, "/v1/reservations", `{"user_id":4,"court_id":10}`, token(t, 3, model.RoleUser))
    assert.Equal(t, http.StatusForbidden, code)
    assert.Equal(t, "forbidden", out.Error)

    svc.On("Create", mock.Anything, mock.MatchedBy(func(r booking.CreateRequest) bool { return r.UserID == 4 })).
        Return(sample(), nil).Once()
    code, _ = call(t, e, http.MethodPost, "/v1/reservations", `{"user_id":4,"court_id":10}`, token(t, 1, model.RoleAdmin))
    assert.Equal(t, http.StatusCreated, code)
    svc.AssertExpectations(t)
}

func TestCancelReservation(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), false)
    cancelled := sample()
    cancelled.Status = model.StatusCancelled
    svc.On("Cancel", mock.Anything, uint64(5)).Return(cancelled, nil).Once()
    svc.On("Cancel", mock.Anything, uint64(5)).Return(nil, booking.ErrAlreadyCancelled).Once()
    svc.On("Cancel", mock.Anything, uint64(9)).Return(nil, booking.ErrReservationNotFound).Once()

    code, out := call(t, e, http.MethodPut, "/v1/reservations/5/cancel", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Contains(t, string(out.Data), `"status":"cancelled"`)

    code, out = call(t, e, http.MethodPut, "/v1/reservations/5/cancel", "", "")
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "conflict", out.Error)

    code, _ = call(t, e, http.MethodPut, "/v1/reservations/9/cancel", "", "")
    assert.Equal(t, http.StatusNotFound, code)

    code, _ = call(t, e, http.MethodPut, "/v1/reservations/abc/cancel", "", "")
    assert.Equal(t, http.StatusBadRequest, code)
    svc.AssertExpectations(t)
}

func TestDeleteReservation(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), false)
    svc.On("Delete", mock.Anything, uint64(5)).Return(nil).Once()
    svc.On("Delete", mock.Anything, uint64(6)).Return(booking.ErrReservationNotFound).Once()

    code, out := call(t, e, http.MethodDelete, "/v1/reservations/5", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, "reservation deleted", out.Message)

    code, _ = call(t, e, http.MethodDelete, "/v1/reservations/6", "", "")
    assert.Equal(t, http.StatusNotFound, code)
    svc.AssertExpectations(t)
}

func TestUpdateReservation(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), false)
    end := "11:00"
    svc.On("Update", mock.Anything, uint64(5), booking.UpdateRequest{EndTime: &end}).Return(sample(), nil).Once()

    code, out := call(t, e, http.MethodPut, "/v1/reservations/5", `{"end_time":"11:00"}`, "")
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, "reservation updated", out.Message)
    svc.AssertExpectations(t)
}

func TestOwnershipChecks(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), true)
    svc.On("Get", mock.Anything, uint64(5)).Return(sample(), nil)
    svc.On("Cancel", mock.Anything, uint64(5)).Return(sample(), nil).Once()

    other := token(t, 2, model.RoleUser)
    code, _ := call(t, e, http.MethodGet, "/v1/reservations/5", "", other)
    assert.Equal(t, http.StatusForbidden, code)
    code, _ = call(t, e, http.MethodPut, "/v1/reservations/5/cancel", "", other)
    assert.Equal(t, http.StatusForbidden, code)
    code, _ = call(t, e, http.MethodDelete, "/v1/reservations/5", "", other)
    assert.Equal(t, http.StatusForbidden, code)
    code, _ = call(t, e, http.MethodGet, "/v1/reservations/user/1", "", other)
    assert.Equal(t, http.StatusForbidden, code)

    code, _ = call(t, e, http.MethodPut, "/v1/reservations/5/cancel", "", token(t, 1, model.RoleUser))
    assert.Equal(t, http.StatusOK, code)
    code, _ = call(t, e, http.MethodGet, "/v1/reservations/5", "", token(t, 9, model.RoleAdmin))
    assert.Equal(t, http.StatusOK, code)

    svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
    svc.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestListReservationsFilter(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), false)
    want := repository.ReservationFilter{UserID: 1, CourtID: 10, Date: "2024-06-01", Status: "pending", Limit: maxPageSize, Offset: 20}
    svc.On("List", mock.Anything, want).Return([]model.Reservation{*sample()}, nil).Once()
    svc.On("List", mock.Anything, repository.ReservationFilter{Limit: defaultPageSize}).Return(nil, nil).Once()

    code, out := call(t, e, http.MethodGet, "/v1/reservations?user_id=1&court_id=10&date=2024-06-01&status=pending&limit=1000&offset=20", "", "")
    assert.Equal(t, http.StatusOK, code)
    require.NotNil(t, out.Count)
    assert.Equal(t, 1, *out.Count)

    code, out = call(t, e, http.MethodGet, "/v1/reservations", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.JSONEq(t, `[]`, string(out.Data))
    assert.Equal(t, 0, *out.Count)

    svc.On("List", mock.Anything, repository.ReservationFilter{Date: "01/06/2024", Limit: defaultPageSize}).
        Return(nil, &booking.Error{Kind: booking.KindValidation, Message: "date must be in YYYY-MM-DD format"}).Once()
    code, out = call(t, e, http.MethodGet, "/v1/reservations?date=01/06/2024", "", "")
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "validation", out.Error)

    for _, q := range []string{"limit=0", "offset=-1", "user_id=x", "status=lost"} {
        code, _ = call(t, e, http.MethodGet, "/v1/reservations?"+q, "", "")
        assert.Equal(t, http.StatusBadRequest, code, q)
    }
    svc.AssertExpectations(t)
}

func TestListByUserAndCourt(t *testing.T) {
    svc := new(mockService)
    e := newServer(svc, new(mockCourts), false)
    detailed := *sample()
    detailed.Court = &model.CourtSummary{ID: 10, Name: "Central", Category: model.CategoryTennis}
    svc.On("ListByUser", mock.Anything, uint64(1)).Return([]model.Reservation{detailed}, nil).Once()
    svc.On("ListByUser", mock.Anything, uint64(2)).Return([]model.Reservation{}, nil).Once()
    svc.On("ListByCourt", mock.Anything, uint64(10), "").Return([]model.Reservation{*sample()}, nil).Once()
    svc.On("ListByCourt", mock.Anything, uint64(10), "2024-06-01").Return([]model.Reservation{*sample()}, nil).Once()
    svc.On("ListByCourt", mock.Anything, uint64(99), "").Return(nil, nil).Once()

    code, out := call(t, e, http.MethodGet, "/v1/reservations/user/1", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Contains(t, string(out.Data), `"court":{"id":10,"name":"Central","category":"tennis"}`)
    code, out = call(t, e, http.MethodGet, "/v1/reservations/user/2", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.True(t, out.Success)
    assert.JSONEq(t, `[]`, string(out.Data))
    assert.Equal(t, 0, *out.Count)
    code, out = call(t, e, http.MethodGet, "/v1/reservations/court/99", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.JSONEq(t, `[]`, string(out.Data))
    code, _ = call(t, e, http.MethodGet, "/v1/reservations/court/10", "", "")
    assert.Equal(t, http.StatusOK, code)
    code, _ = call(t, e, http.MethodGet, "/v1/courts/10/reservations?date=2024-06-01", "", "")
    assert.Equal(t, http.StatusOK, code)
    svc.AssertExpectations(t)
}

func TestCourtEndpoints(t *testing.T) {
    courts := new(mockCourts)
    e := newServer(new(mockService), courts, false)
    court := model.Court{ID: 10, Name: "Central", Category: model.CategoryTennis, Capacity: 4, Status: model.CourtAvailable}
    courts.On("ListCourts", mock.Anything, repository.CourtFilter{Category: model.CategoryTennis}).Return([]model.Court{court}, nil).Once()
    courts.On("ListCourts", mock.Anything, repository.CourtFilter{Status: model.CourtAvailable}).Return([]model.Court{court}, nil).Once()
    courts.On("GetCourt", mock.Anything, uint64(10)).Return(&court, nil)
    courts.On("GetCourt", mock.Anything, uint64(11)).Return(nil, repository.ErrNotFound)
    courts.On("ListTimeSlots", mock.Anything, uint64(10)).Return([]model.TimeSlot{{ID: 1, CourtID: 10, StartTime: "08:00", EndTime: "09:00"}}, nil).Once()

    code, out := call(t, e, http.MethodGet, "/v1/courts?category=tennis", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, 1, *out.Count)

    code, _ = call(t, e, http.MethodGet, "/v1/courts?category=curling", "", "")
    assert.Equal(t, http.StatusBadRequest, code)

    code, _ = call(t, e, http.MethodGet, "/v1/courts/available", "", "")
    assert.Equal(t, http.StatusOK, code)

    code, out = call(t, e, http.MethodGet, "/v1/courts/10", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Contains(t, string(out.Data), `"name":"Central"`)

    code, out = call(t, e, http.MethodGet, "/v1/courts/11", "", "")
    assert.Equal(t, http.StatusNotFound, code)
    assert.Equal(t, "court not found", out.Message)

    code, out = call(t, e, http.MethodGet, "/v1/courts/10/time-slots", "", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Contains(t, string(out.Data), `"start_time":"08:00"`)

    code, _ = call(t, e, http.MethodGet, "/v1/courts/11/time-slots", "", "")
    assert.Equal(t, http.StatusNotFound, code)
    courts.AssertExpectations(t)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
    e := echo.New()
    e.GET("/up", Health(pinger{}))
    e.GET("/down", Health(pinger{err: errors.New("gone")}))
    e.GET("/bare", Health(nil))

    for path, want := range map[string]int{"/up": 200, "/down": 503, "/bare": 200} {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
        assert.Equal(t, want, rec.Code, path)
    }
}
