package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/present/rest/middleware"
	"github.com/totegamma/rentchain/internal/present/rest/presenter"
	"github.com/totegamma/rentchain/internal/service"
	"github.com/totegamma/rentchain/internal/usecase"
)

type Handler struct {
	config     domain.Config
	users      *usecase.UserUsecase
	properties *usecase.PropertyUsecase
	agreements *usecase.AgreementUsecase
	events     *usecase.EventUsecase
	signal     *service.SignalService
}

// NewHandler builds the REST handler. signal may be nil, which disables /realtime.
func NewHandler(
	config domain.Config,
	users *usecase.UserUsecase,
	properties *usecase.PropertyUsecase,
	agreements *usecase.AgreementUsecase,
	events *usecase.EventUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:     config,
		users:      users,
		properties: properties,
		agreements: agreements,
		events:     events,
		signal:     signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/.well-known/rentchain", h.handleWellKnown)

	e.GET("/users/:address", h.handleGetUser)
	e.GET("/properties/:id", h.handleGetProperty)
	e.GET("/properties/:id/title", h.handleGetTitle)
	e.GET("/properties/:id/agreements", h.handleListAgreements)
	e.GET("/properties/:id/agreement", h.handleGetAgreementByProperty)
	e.GET("/accounts/:address/properties", h.handleListProperties)
	e.GET("/accounts/:address/transfers", h.handleListTransfers)
	e.GET("/agreements/:id", h.handleGetAgreement)
	e.GET("/agreements/:id/escrow", h.handleGetEscrow)
	e.GET("/events", h.handleListEvents)
	e.GET("/realtime", h.handleRealtime)

	signed := middleware.RequireRequester
	e.POST("/users", h.handleRegisterUser, signed)
	e.POST("/properties", h.handleRegisterProperty, signed)
	e.POST("/agreements", h.handleCreateAgreement, signed)
	e.POST("/agreements/:id/sign", h.handleSign, signed)
	e.POST("/agreements/:id/rent", h.handlePayRent, signed)
	e.POST("/agreements/:id/complete", h.handleComplete, signed)
	e.POST("/agreements/:id/cancel", h.handleCancel, signed)
}

func (h *Handler) handleWellKnown(c echo.Context) error {
	wellknown := rentchain.WellKnownRentchain{
		Version:  rentchain.APIVersion,
		FQDN:     h.config.FQDN,
		Operator: h.config.Operator,
		Endpoints: map[string]rentchain.Endpoint{
			"rentchain.user":                {Template: "/users/{address}", Method: "GET"},
			"rentchain.user.register":       {Template: "/users", Method: "POST"},
			"rentchain.property":            {Template: "/properties/{id}", Method: "GET"},
			"rentchain.property.register":   {Template: "/properties", Method: "POST"},
			"rentchain.property.title":      {Template: "/properties/{id}/title", Method: "GET"},
			"rentchain.property.agreement":  {Template: "/properties/{id}/agreement", Method: "GET"},
			"rentchain.property.agreements": {Template: "/properties/{id}/agreements", Method: "GET"},
			"rentchain.account.properties":  {Template: "/accounts/{address}/properties", Method: "GET"},
			"rentchain.account.transfers":   {Template: "/accounts/{address}/transfers", Method: "GET", Query: &[]string{"limit"}},
			"rentchain.agreement":           {Template: "/agreements/{id}", Method: "GET"},
			"rentchain.agreement.create":    {Template: "/agreements", Method: "POST"},
			"rentchain.agreement.sign":      {Template: "/agreements/{id}/sign", Method: "POST"},
			"rentchain.agreement.rent":      {Template: "/agreements/{id}/rent", Method: "POST"},
			"rentchain.agreement.complete":  {Template: "/agreements/{id}/complete", Method: "POST"},
			"rentchain.agreement.cancel":    {Template: "/agreements/{id}/cancel", Method: "POST"},
			"rentchain.agreement.escrow":    {Template: "/agreements/{id}/escrow", Method: "GET"},
			"rentchain.events":              {Template: "/events", Method: "GET", Query: &[]string{"after", "limit"}},
			"rentchain.realtime":            {Template: "/realtime", Method: "GET"},
		},
	}
	return presenter.OK(c, wellknown)
}

func requester(c echo.Context) string {
	address, _ := middleware.Requester(c.Request().Context())
	return address
}

func paramID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}

func (h *Handler) handleRegisterUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req rentchain.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	user, err := h.users.Register(ctx, requester(c), req.Address, req.KYCVerified, domain.RoleFlag(req.RoleFlags))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.User(user))
}

func (h *Handler) handleGetUser(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("address"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cacheable(c, presenter.User(user))
}

func (h *Handler) handleRegisterProperty(c echo.Context) error {
	ctx := c.Request().Context()

	var req rentchain.RegisterPropertyRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	property, title, err := h.properties.RegisterAndIssueTitle(ctx, requester(c), req.Owner, rentchain.BigOf(req.PricePerPeriod), req.DataHash)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, rentchain.RegisterPropertyResponse{
		Property: presenter.Property(property, &title),
		Title:    presenter.Title(title),
	})
}

func (h *Handler) handleGetProperty(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	property, err := h.properties.Get(ctx, id)
	if err != nil {
		return presenter.Error(c, err)
	}

	var title *domain.Title
	t, err := h.properties.Title(ctx, id)
	switch {
	case err == nil:
		title = &t
	case !errors.Is(err, domain.ErrNotFound):
		return presenter.Error(c, err)
	}

	return presenter.Cacheable(c, presenter.Property(property, title))
}

func (h *Handler) handleGetTitle(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	title, err := h.properties.Title(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cacheable(c, presenter.Title(title))
}

func (h *Handler) handleListAgreements(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	agreements, err := h.agreements.ListByProperty(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cacheable(c, presenter.Agreements(agreements))
}

func (h *Handler) handleGetAgreementByProperty(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	agreement, err := h.agreements.GetByProperty(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cacheable(c, presenter.Agreement(agreement))
}

func (h *Handler) handleListProperties(c echo.Context) error {
	properties, err := h.properties.ListByOwner(c.Request().Context(), c.Param("address"))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cacheable(c, presenter.Properties(properties))
}

func (h *Handler) handleListTransfers(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	transfers, err := h.agreements.ListTransfers(c.Request().Context(), c.Param("address"), limit)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cacheable(c, presenter.Transfers(transfers))
}

func (h *Handler) handleCreateAgreement(c echo.Context) error {
	ctx := c.Request().Context()

	var req rentchain.CreateAgreementRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	agreement, err := h.agreements.Create(ctx, requester(c), usecase.AgreementInput{
		PropertyID:    req.PropertyID,
		Tenant:        req.Tenant,
		RentAmount:    rentchain.BigOf(req.RentAmount),
		DepositAmount: rentchain.BigOf(req.DepositAmount),
		DataHash:      req.DataHash,
	})
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.Agreement(agreement))
}

func (h *Handler) handleGetAgreement(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	agreement, err := h.agreements.Get(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cacheable(c, presenter.Agreement(agreement))
}

func (h *Handler) handleSign(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	var req rentchain.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	agreement, err := h.agreements.SignAndFund(c.Request().Context(), requester(c), id, rentchain.BigOf(req.Amount))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.Agreement(agreement))
}

func (h *Handler) handlePayRent(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	var req rentchain.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	agreement, err := h.agreements.PayRent(c.Request().Context(), requester(c), id, rentchain.BigOf(req.Amount))
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.Agreement(agreement))
}

func (h *Handler) handleComplete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	var req rentchain.CompleteRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	agreement, err := h.agreements.CompleteAndRelease(
		c.Request().Context(),
		requester(c),
		id,
		domain.TerminationPolicy(req.Policy),
		rentchain.BigOf(req.ReleaseAmount),
	)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.Agreement(agreement))
}

func (h *Handler) handleCancel(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	var req rentchain.CancelRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	agreement, err := h.agreements.Cancel(c.Request().Context(), requester(c), id, req.Reason)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, presenter.Agreement(agreement))
}

func (h *Handler) handleGetEscrow(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return presenter.BadRequest(c, err)
	}
	balance, err := h.agreements.EscrowBalance(c.Request().Context(), id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, rentchain.EscrowBalance{AgreementID: id, Balance: balance.String()})
}

func (h *Handler) handleListEvents(c echo.Context) error {
	var after uint64
	if raw := c.QueryParam("after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid after parameter")
		}
		after = v
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	events, err := h.events.ListSince(c.Request().Context(), after, limit)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, events)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Request is a realtime control message. Channels look like
// "property.1", "agreement.7" or "account.0xabc...".
type Request struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime is not enabled"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan rentchain.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		defer close(quit)
		for {
			var req Request
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}

			switch req.Type {
			case "listen":
				select {
				case input <- req.Channels:
				case <-ctx.Done():
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %s", req.Channels),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
