package handler

import (
	"net/http"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/labstack/echo/v4"
)

type CompilationHandler struct {
	svc service.CompilationService
}

func NewCompilationHandler(svc service.CompilationService) *CompilationHandler {
	return &CompilationHandler{svc: svc}
}

func (h *CompilationHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin/compilations")
	admin.POST("", h.CreateCompilation)
	admin.PATCH("/:compId", h.UpdateCompilation)
	admin.DELETE("/:compId", h.DeleteCompilation)

	public := e.Group("/compilations")
	public.GET("", h.ListCompilations)
	public.GET("/:compId", h.GetCompilation)
}

func (h *CompilationHandler) CreateCompilation(c echo.Context) error {
	var req dto.NewCompilationRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.CreateCompilation(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *CompilationHandler) UpdateCompilation(c echo.Context) error {
	id, err := pathID(c, "compId")
	if err != nil {
		return err
	}
	var req dto.UpdateCompilationRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.UpdateCompilation(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CompilationHandler) DeleteCompilation(c echo.Context) error {
	id, err := pathID(c, "compId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCompilation(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CompilationHandler) ListCompilations(c echo.Context) error {
	pinned, err := queryBool(c, "pinned")
	if err != nil {
		return err
	}
	from, size, err := pagination(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.ListCompilations(c.Request().Context(), pinned, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CompilationHandler) GetCompilation(c echo.Context) error {
	id, err := pathID(c, "compId")
	if err != nil {
		return err
	}

	resp, err := h.svc.GetCompilation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
