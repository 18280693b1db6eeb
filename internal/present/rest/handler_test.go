package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/clock"
	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database"
	"github.com/totegamma/rentchain/internal/infra/repository"
	"github.com/totegamma/rentchain/internal/present/rest/middleware"
	"github.com/totegamma/rentchain/internal/service"
	"github.com/totegamma/rentchain/internal/usecase"
	"github.com/totegamma/rentchain/jwt"
)

const fqdn = "rentchain.test"

type wallet struct {
	key     string
	address string
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	key, address, err := rentchain.GenerateKey()
	require.NoError(t, err)
	return wallet{key: key, address: address}
}

type testServer struct {
	e        *echo.Echo
	clock    *clock.Manual
	operator wallet
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	operator := newWallet(t)
	manual := clock.NewManual(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	config := domain.Config{FQDN: fqdn, Operator: operator.address, MinimumTerm: domain.DefaultMinimumTerm}
	deps := usecase.Deps{Store: repository.NewStore(db, nil), Clock: manual, Config: config}

	h := NewHandler(
		config,
		usecase.NewUserUsecase(deps),
		usecase.NewPropertyUsecase(deps),
		usecase.NewAgreementUsecase(deps),
		usecase.NewEventUsecase(deps),
		nil,
	)

	e := echo.New()
	e.Use(middleware.NewAuthMiddleware(service.NewAuthService(config, manual)).IdentifyIdentity)
	h.RegisterRoutes(e)

	return &testServer{e: e, clock: manual, operator: operator}
}

func (s *testServer) token(t *testing.T, w wallet) string {
	t.Helper()
	token, err := jwt.Create(jwt.Claims{
		Subject:        rentchain.JWTSubject,
		Audience:       fqdn,
		ExpirationTime: strconv.FormatInt(s.clock.Now().Add(365*24*time.Hour).Unix(), 10),
	}, w.key)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, as *wallet, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if as != nil {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token(t, *as))
	}
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestWellKnown(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/.well-known/rentchain", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	wk := decode[rentchain.WellKnownRentchain](t, rec)
	assert.Equal(t, fqdn, wk.FQDN)
	assert.Equal(t, s.operator.address, wk.Operator)
	assert.Equal(t, "/agreements/{id}/sign", wk.Endpoints["rentchain.agreement.sign"].Template)
}

func TestRentalFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner, tenant := newWallet(t), newWallet(t)

	// anonymous and non-operator registrations are refused
	rec := s.do(t, http.MethodPost, "/users", nil, rentchain.RegisterUserRequest{Address: owner.address, KYCVerified: true}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodPost, "/users", &owner, rentchain.RegisterUserRequest{Address: owner.address, KYCVerified: true}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, w := range []wallet{owner, tenant} {
		rec = s.do(t, http.MethodPost, "/users", &s.operator, rentchain.RegisterUserRequest{Address: w.address, KYCVerified: true}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/users/"+tenant.address, nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[rentchain.User](t, rec).KYCVerified)

	// register and title
	rec = s.do(t, http.MethodPost, "/properties", &owner, rentchain.RegisterPropertyRequest{
		Owner:          owner.address,
		PricePerPeriod: rentchain.Amount(rentchain.MustEther("0.5")),
		DataHash:       "0x1234",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	registered := decode[rentchain.RegisterPropertyResponse](t, rec)
	assert.Equal(t, uint64(1), registered.Property.ID)
	assert.Equal(t, "0x1234", registered.Title.URI)

	rec = s.do(t, http.MethodGet, "/properties/1", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	property := decode[rentchain.Property](t, rec)
	assert.True(t, property.Available)
	require.NotNil(t, property.Title)
	assert.Equal(t, owner.address, property.Title.Owner)

	etag := rec.Header().Get("ETag")
	rec = s.do(t, http.MethodGet, "/properties/1", nil, nil, http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)

	// create and sign
	rec = s.do(t, http.MethodPost, "/agreements", &tenant, rentchain.CreateAgreementRequest{
		PropertyID:    1,
		Tenant:        tenant.address,
		RentAmount:    rentchain.Amount(rentchain.MustEther("0.5")),
		DepositAmount: rentchain.Amount(rentchain.MustEther("1")),
	}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/agreements", &owner, rentchain.CreateAgreementRequest{
		PropertyID:    1,
		Tenant:        tenant.address,
		RentAmount:    rentchain.Amount(rentchain.MustEther("0.5")),
		DepositAmount: rentchain.Amount(rentchain.MustEther("1")),
		DataHash:      "0x5678",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	agreement := decode[rentchain.Agreement](t, rec)
	assert.Equal(t, "Created", agreement.State)

	rec = s.do(t, http.MethodPost, "/agreements/1/sign", &tenant, rentchain.PaymentRequest{Amount: rentchain.Amount(rentchain.MustEther("0.9"))}, nil)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = s.do(t, http.MethodPost, "/agreements/1/sign", &tenant, rentchain.PaymentRequest{Amount: rentchain.Amount(rentchain.MustEther("1"))}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Active", decode[rentchain.Agreement](t, rec).State)

	rec = s.do(t, http.MethodPost, "/agreements/1/sign", &tenant, rentchain.PaymentRequest{Amount: rentchain.Amount(rentchain.MustEther("1"))}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/agreements/1/escrow", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rentchain.MustEther("1").String(), decode[rentchain.EscrowBalance](t, rec).Balance)

	// rent, term, completion
	rec = s.do(t, http.MethodPost, "/agreements/1/rent", &tenant, rentchain.PaymentRequest{Amount: rentchain.Amount(rentchain.MustEther("0.5"))}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	complete := rentchain.CompleteRequest{Policy: 0, ReleaseAmount: rentchain.Amount(rentchain.MustEther("1"))}
	rec = s.do(t, http.MethodPost, "/agreements/1/complete", &owner, complete, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	s.clock.Advance(30 * 24 * time.Hour)

	rec = s.do(t, http.MethodPost, "/agreements/1/complete", &owner, complete, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Completed", decode[rentchain.Agreement](t, rec).State)

	rec = s.do(t, http.MethodGet, "/properties/1/agreement", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Completed", decode[rentchain.Agreement](t, rec).State)

	rec = s.do(t, http.MethodGet, "/accounts/"+tenant.address+"/transfers", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]rentchain.Transfer](t, rec), 3)

	rec = s.do(t, http.MethodGet, "/events?after=2", nil, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]rentchain.Event](t, rec)
	require.NotEmpty(t, events)
	assert.Equal(t, "PropertyRegistered", events[0].Type)
	assert.Equal(t, "AgreementCompleted", events[len(events)-1].Type)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		path string
		code int
	}{
		{"/properties/abc", http.StatusBadRequest},
		{"/properties/9", http.StatusNotFound},
		{"/properties/9/title", http.StatusNotFound},
		{"/properties/9/agreements", http.StatusNotFound},
		{"/agreements/9", http.StatusNotFound},
		{"/agreements/9/escrow", http.StatusNotFound},
		{"/users/0x123", http.StatusBadRequest},
		{"/events?limit=x", http.StatusBadRequest},
		{"/realtime", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		rec := s.do(t, http.MethodGet, tc.path, nil, nil, nil)
		assert.Equal(t, tc.code, rec.Code, tc.path)
	}

	stranger := newWallet(t)
	rec := s.do(t, http.MethodPost, "/agreements/9/cancel", &stranger, rentchain.CancelRequest{Reason: "x"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
