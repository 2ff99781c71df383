package handler

import (
	"net/http"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/service"
	"github.com/labstack/echo/v4"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

func (h *CommentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/users/:userId/comments", h.AddComment)
	e.PATCH("/users/:userId/comments/:commentId", h.UpdateComment)
	e.DELETE("/users/:userId/comments/:commentId", h.DeleteComment)
	e.GET("/events/:id/comments", h.ListEventComments)
	e.DELETE("/admin/events/:commentId", h.DeleteCommentByAdmin)
}

func (h *CommentHandler) AddComment(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	eventID, err := queryID(c, "eventId")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.AddComment(c.Request().Context(), userID, eventID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	resp, err := h.svc.UpdateComment(c.Request().Context(), userID, commentID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteComment(c.Request().Context(), userID, commentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CommentHandler) ListEventComments(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	from, size, err := pagination(c)
	if err != nil {
		return err
	}

	resp, err := h.svc.ListEventComments(c.Request().Context(), eventID, from, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) DeleteCommentByAdmin(c echo.Context) error {
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCommentByAdmin(c.Request().Context(), commentID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
