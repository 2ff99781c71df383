package handler

import (
	"net/http"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/admin/users")
	g.POST("", h.CreateUser)
	g.GET("", h.ListUsers)
	g.DELETE("/:userId", h.DeleteUser)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req dto.NewUserRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.CreateUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	ids, err := queryIDs(c, "ids")
	if err != nil {
		return err
	}
	from, size, err := pagination(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.ListUsers(c.Request().Context(), ids, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
