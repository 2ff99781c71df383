package handler

import (
	"net/http"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/labstack/echo/v4"
)

type CategoryHandler struct {
	svc service.CategoryService
}

func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin/categories")
	admin.POST("", h.CreateCategory)
	admin.PATCH("/:catId", h.UpdateCategory)
	admin.DELETE("/:catId", h.DeleteCategory)

	public := e.Group("/categories")
	public.GET("", h.ListCategories)
	public.GET("/:catId", h.GetCategory)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req dto.CategoryRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := pathID(c, "catId")
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.UpdateCategory(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := pathID(c, "catId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	from, size, err := pagination(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.ListCategories(c.Request().Context(), from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := pathID(c, "catId")
	if err != nil {
		return err
	}

	resp, err := h.svc.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
