package handler

import (
	"net/http"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/labstack/echo/v4"
)

type RequestHandler struct {
	svc service.RequestService
}

func NewRequestHandler(svc service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

func (h *RequestHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/users/:userId")
	g.GET("/requests", h.ListUserRequests)
	g.POST("/requests", h.AddRequest)
	g.PATCH("/requests/:requestId/cancel", h.CancelRequest)
	g.GET("/events/:eventId/requests", h.ListEventRequests)
	g.PATCH("/events/:eventId/requests", h.UpdateRequestStatuses)
}

func (h *RequestHandler) ListUserRequests(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}

	resp, err := h.svc.ListUserRequests(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) AddRequest(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := queryID(c, "eventId")
	if err != nil {
		return err
	}

	resp, err := h.svc.AddRequest(c.Request().Context(), userID, eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *RequestHandler) CancelRequest(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	requestID, err := pathID(c, "requestId")
	if err != nil {
		return err
	}

	resp, err := h.svc.CancelRequest(c.Request().Context(), userID, requestID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) ListEventRequests(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}

	resp, err := h.svc.ListEventRequests(c.Request().Context(), userID, eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) UpdateRequestStatuses(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return err
	}
	var req dto.EventRequestStatusUpdateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.UpdateRequestStatuses(c.Request().Context(), userID, eventID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
