package repositories

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Infinite-Loop-Club/club-site-api/internal/database"
	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
	"github.com/Infinite-Loop-Club/club-site-api/internal/utils"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, postID primitive.ObjectID) (*models.Post, error)
	FindAll(ctx context.Context) ([]models.Post, error)
	Delete(ctx context.Context, postID primitive.ObjectID) (*mongo.DeleteResult, error)
}

type postRepository struct {
	db database.Service
}

func NewPostRepository(db database.Service) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) collection() *mongo.Collection {
	return r.db.Database().Collection("posts")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	queryType := "create"
	repository := "post"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	_, err := r.collection().InsertOne(ctx, post)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("title", post.Title).Msg("Failed to insert post into database")
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (r *postRepository) FindByID(ctx context.Context, postID primitive.ObjectID) (*models.Post, error) {
	queryType := "findById"
	repository := "post"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var post models.Post
	err := r.collection().FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err // Can be mongo.ErrNoDocuments
	}
	return &post, nil
}

func (r *postRepository) FindAll(ctx context.Context) ([]models.Post, error) {
	queryType := "findAll"
	repository := "post"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Msg("Failed to list posts")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, postID primitive.ObjectID) (*mongo.DeleteResult, error) {
	queryType := "delete"
	repository := "post"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": postID})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("post_id", postID.Hex()).Msg("Error deleting post")
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}
	return result, nil
}
