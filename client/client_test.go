package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/clock"
	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database"
	"github.com/totegamma/rentchain/internal/infra/repository"
	"github.com/totegamma/rentchain/internal/present/rest"
	"github.com/totegamma/rentchain/internal/present/rest/middleware"
	"github.com/totegamma/rentchain/internal/service"
	"github.com/totegamma/rentchain/internal/usecase"
)

const fqdn = "rentchain.test"

func newServer(t *testing.T, operator string) *httptest.Server {
	t.Helper()

	db, err := database.NewSqlite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	config := domain.Config{FQDN: fqdn, Operator: operator}
	deps := usecase.Deps{Store: repository.NewStore(db, nil), Clock: clock.System{}, Config: config}

	h := rest.NewHandler(
		config,
		usecase.NewUserUsecase(deps),
		usecase.NewPropertyUsecase(deps),
		usecase.NewAgreementUsecase(deps),
		usecase.NewEventUsecase(deps),
		nil,
	)

	e := echo.New()
	e.Use(middleware.NewAuthMiddleware(service.NewAuthService(config, clock.System{})).IdentifyIdentity)
	h.RegisterRoutes(e)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	key, _, err := rentchain.GenerateKey()
	require.NoError(t, err)
	c, err := New(baseURL, WithKey(key, fqdn))
	require.NoError(t, err)
	return c
}

func TestClientRentalFlow(t *testing.T) {
	ctx := context.Background()

	operatorKey, operatorAddress, err := rentchain.GenerateKey()
	require.NoError(t, err)
	server := newServer(t, operatorAddress)

	operator, err := New(server.URL, WithKey(operatorKey, fqdn))
	require.NoError(t, err)
	owner := newClient(t, server.URL)
	tenant := newClient(t, server.URL)

	wk, err := operator.WellKnown(ctx)
	require.NoError(t, err)
	assert.Equal(t, fqdn, wk.FQDN)
	assert.Equal(t, operatorAddress, wk.Operator)

	_, err = operator.RegisterUser(ctx, owner.Address(), true, 0)
	require.NoError(t, err)
	_, err = operator.RegisterUser(ctx, tenant.Address(), true, 0)
	require.NoError(t, err)

	user, err := operator.GetUser(ctx, tenant.Address())
	require.NoError(t, err)
	assert.True(t, user.KYCVerified)

	registered, err := owner.RegisterProperty(ctx, owner.Address(), rentchain.MustEther("1"), "0xdata")
	require.NoError(t, err)
	propertyID := registered.Property.ID

	title, err := tenant.GetTitle(ctx, propertyID)
	require.NoError(t, err)
	assert.Equal(t, owner.Address(), title.Owner)

	rent := rentchain.MustEther("1")
	deposit := rentchain.MustEther("2")
	agreement, err := owner.CreateAgreement(ctx, propertyID, tenant.Address(), rent, deposit, "0xlease")
	require.NoError(t, err)
	assert.Equal(t, "Created", agreement.State)

	_, err = tenant.Sign(ctx, agreement.ID, rentchain.MustEther("1"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Equal(t, "Funds", apiErr.Kind)

	agreement, err = tenant.Sign(ctx, agreement.ID, deposit)
	require.NoError(t, err)
	assert.Equal(t, "Active", agreement.State)

	balance, err := tenant.EscrowBalance(ctx, agreement.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Cmp(deposit))

	agreement, err = tenant.PayRent(ctx, agreement.ID, rent)
	require.NoError(t, err)
	assert.EqualValues(t, 1, agreement.RentPaidCount)

	property, err := owner.GetProperty(ctx, propertyID)
	require.NoError(t, err)
	assert.Equal(t, "Rented", property.Status)

	agreement, err = owner.Complete(ctx, agreement.ID, 0, deposit)
	require.NoError(t, err)
	assert.Equal(t, "Completed", agreement.State)

	balance, err = tenant.EscrowBalance(ctx, agreement.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Sign())

	current, err := tenant.GetAgreementByProperty(ctx, propertyID)
	require.NoError(t, err)
	assert.Equal(t, agreement.ID, current.ID)

	agreements, err := tenant.ListAgreements(ctx, propertyID)
	require.NoError(t, err)
	assert.Len(t, agreements, 1)

	properties, err := tenant.ListProperties(ctx, owner.Address())
	require.NoError(t, err)
	assert.Len(t, properties, 1)

	transfers, err := tenant.ListTransfers(ctx, tenant.Address(), 0)
	require.NoError(t, err)
	assert.Len(t, transfers, 3)

	events, err := tenant.ListEvents(ctx, 0, 0)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "UserRegistered", events[0].Type)
	assert.Equal(t, "AgreementCompleted", events[len(events)-1].Type)
}

func TestClientCancel(t *testing.T) {
	ctx := context.Background()

	operatorKey, operatorAddress, err := rentchain.GenerateKey()
	require.NoError(t, err)
	server := newServer(t, operatorAddress)

	operator, err := New(server.URL, WithKey(operatorKey, fqdn))
	require.NoError(t, err)
	owner := newClient(t, server.URL)
	tenant := newClient(t, server.URL)

	for _, c := range []*Client{owner, tenant} {
		_, err = operator.RegisterUser(ctx, c.Address(), true, 0)
		require.NoError(t, err)
	}

	registered, err := owner.RegisterProperty(ctx, owner.Address(), rentchain.MustEther("1"), "")
	require.NoError(t, err)

	agreement, err := owner.CreateAgreement(ctx, registered.Property.ID, tenant.Address(), rentchain.MustEther("1"), rentchain.MustEther("1"), "")
	require.NoError(t, err)

	agreement, err = tenant.Cancel(ctx, agreement.ID, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", agreement.State)
	assert.Equal(t, "changed plans", agreement.CancelReason)

	_, err = owner.Cancel(ctx, agreement.ID, "again")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestClientErrors(t *testing.T) {
	ctx := context.Background()
	server := newServer(t, "")

	anonymous, err := New(server.URL)
	require.NoError(t, err)

	_, err = anonymous.RegisterUser(ctx, "0x0000000000000000000000000000000000000001", true, 0)
	assert.Error(t, err)

	_, err = anonymous.GetProperty(ctx, 42)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NotFound", apiErr.Kind)

	_, err = anonymous.GetTitle(ctx, 42)
	assert.Error(t, err)
}
