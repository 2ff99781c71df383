package handler

import (
	"net/http"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(e *echo.Echo) {
	private := e.Group("/users/:userId/events")
	private.POST("", h.CreateEvent)
	private.GET("", h.ListInitiatorEvents)
	private.GET("/:eventId", h.GetInitiatorEvent)
	private.PATCH("/:eventId", h.UpdateInitiatorEvent)

	admin := e.Group("/admin/events")
	admin.GET("", h.ListAdminEvents)
	admin.PATCH("/:eventId", h.UpdateAdminEvent)

	public := e.Group("/events")
	public.GET("", h.ListPublicEvents)
	public.GET("/:id", h.GetPublicEvent)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	var req dto.NewEventRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.CreateEvent(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *EventHandler) ListInitiatorEvents(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	from, size, err := pagination(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.ListEventsByInitiator(c.Request().Context(), userID, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) GetInitiatorEvent(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	resp, err := h.svc.GetEventByInitiator(c.Request().Context(), userID, eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) UpdateInitiatorEvent(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}
	var req dto.UpdateEventUserRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.UpdateEventByInitiator(c.Request().Context(), userID, eventID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) ListAdminEvents(c echo.Context) error {
	var (
		f   dto.AdminEventFilter
		err error
	)
	if f.Users, err = queryIDs(c, "users"); err != nil {
		return err
	}
	if f.Categories, err = queryIDs(c, "categories"); err != nil {
		return err
	}
	if f.RangeStart, err = queryTime(c, "rangeStart"); err != nil {
		return err
	}
	if f.RangeEnd, err = queryTime(c, "rangeEnd"); err != nil {
		return err
	}
	if f.From, f.Size, err = pagination(c); err != nil {
		return err
	}
	f.States = queryValues(c, "states")

	resp, err := h.svc.ListEventsByAdmin(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) UpdateAdminEvent(c echo.Context) error {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}
	var req dto.UpdateEventAdminRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.UpdateEventByAdmin(c.Request().Context(), eventID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) ListPublicEvents(c echo.Context) error {
	f := dto.PublicEventFilter{
		Text:       c.QueryParam("text"),
		Sort:       c.QueryParam("sort"),
		ClientIP:   c.RealIP(),
		RequestURI: c.Request().URL.Path,
	}
	var err error
	if f.Categories, err = queryIDs(c, "categories"); err != nil {
		return err
	}
	if f.Paid, err = queryBool(c, "paid"); err != nil {
		return err
	}
	if f.RangeStart, err = queryTime(c, "rangeStart"); err != nil {
		return err
	}
	if f.RangeEnd, err = queryTime(c, "rangeEnd"); err != nil {
		return err
	}
	onlyAvailable, err := queryBool(c, "onlyAvailable")
	if err != nil {
		return err
	}
	f.OnlyAvailable = onlyAvailable != nil && *onlyAvailable
	if f.From, f.Size, err = pagination(c); err != nil {
		return err
	}

	resp, err := h.svc.ListEventsPublic(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *EventHandler) GetPublicEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	resp, err := h.svc.GetEventPublic(c.Request().Context(), id, c.RealIP(), c.Request().URL.Path)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
