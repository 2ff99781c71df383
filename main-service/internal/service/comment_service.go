package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"gorm.io/gorm"
)

type CommentService interface {
	AddComment(ctx context.Context, userID, eventID uint, req dto.CommentRequest) (*dto.CommentResponse, error)
	UpdateComment(ctx context.Context, userID, commentID uint, req dto.CommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID uint) error
	DeleteCommentByAdmin(ctx context.Context, commentID uint) error
	ListEventComments(ctx context.Context, eventID uint, from, size int) ([]dto.CommentResponse, error)
}

type commentService struct {
	repo   repository.CommentRepository
	events repository.EventRepository
	users  repository.UserRepository
	now    func() time.Time
}

func NewCommentService(repo repository.CommentRepository, events repository.EventRepository, users repository.UserRepository) CommentService {
	return &commentService{repo: repo, events: events, users: users, now: time.Now}
}

func (s *commentService) AddComment(ctx context.Context, userID, eventID uint, req dto.CommentRequest) (*dto.CommentResponse, error) {
	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, "event", eventID)
	}
	if event.State != models.EventPublished {
		return nil, conflictf("event %d is not published", eventID)
	}

	comment := &models.Comment{
		Text:     strings.TrimSpace(req.Text),
		EventID:  eventID,
		AuthorID: userID,
		Created:  s.now(),
		Author:   author,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, writeErr(err, "create comment")
	}
	resp := dto.ToCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) UpdateComment(ctx context.Context, userID, commentID uint, req dto.CommentRequest) (*dto.CommentResponse, error) {
	comment, err := s.authored(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	comment.Text = strings.TrimSpace(req.Text)
	if err := s.repo.UpdateText(ctx, comment.ID, comment.Text); err != nil {
		return nil, fmt.Errorf("update comment %d: %w", commentID, err)
	}
	resp := dto.ToCommentResponse(comment)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.authored(ctx, userID, commentID); err != nil {
		return err
	}
	return s.DeleteCommentByAdmin(ctx, commentID)
}

func (s *commentService) DeleteCommentByAdmin(ctx context.Context, commentID uint) error {
	if err := s.repo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lookupErr(err, "comment", commentID)
		}
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	return nil
}

func (s *commentService) ListEventComments(ctx context.Context, eventID uint, from, size int) ([]dto.CommentResponse, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, lookupErr(err, "event", eventID)
	}
	comments, err := s.repo.FindByEventID(ctx, eventID, from, size)
	if err != nil {
		return nil, fmt.Errorf("list comments of event %d: %w", eventID, err)
	}
	resp := make([]dto.CommentResponse, len(comments))
	for i := range comments {
		resp[i] = dto.ToCommentResponse(&comments[i])
	}
	return resp, nil
}

// authored loads a comment and checks that userID wrote it.
func (s *commentService) authored(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		return nil, lookupErr(err, "comment", commentID)
	}
	if comment.AuthorID != userID {
		return nil, validationf("user %d is not the author of comment %d", userID, commentID)
	}
	return comment, nil
}
