package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
	"github.com/Infinite-Loop-Club/club-site-api/internal/repositories"
)

const defaultAuthor = "admin"

type PostService interface {
	CreatePost(ctx context.Context, post *models.Post) (*models.Post, error)
	GetPost(ctx context.Context, postID primitive.ObjectID) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	DeletePost(ctx context.Context, postID primitive.ObjectID) error
}

type postService struct {
	postRepo repositories.PostRepository
	validate *validator.Validate
}

func NewPostService(postRepo repositories.PostRepository) PostService {
	return &postService{
		postRepo: postRepo,
		validate: newValidator(),
	}
}

func (s *postService) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := s.validate.Struct(post); err != nil {
		return nil, err
	}

	if post.Author == "" {
		post.Author = defaultAuthor
	}
	post.ID = primitive.NewObjectID()
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	created, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	log.Info().Str("post_id", created.ID.Hex()).Str("title", created.Title).Msg("Post created")
	return created, nil
}

func (s *postService) GetPost(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to fetch post: %w", err)
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.FindAll(ctx)
}

func (s *postService) DeletePost(ctx context.Context, postID primitive.ObjectID) error {
	result, err := s.postRepo.Delete(ctx, postID)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrPostNotFound
	}

	log.Info().Str("post_id", postID.Hex()).Msg("Post deleted")
	return nil
}
