package repositories

import (
	"context"
	"fmt"
	"time"

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

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) (*models.Member, error)
	FindByID(ctx context.Context, memberID primitive.ObjectID) (*models.Member, error)
	FindByRegisterNumber(ctx context.Context, registerNumber int64) (*models.Member, error)
	FindByEmail(ctx context.Context, email string) (*models.Member, error)
	FindAll(ctx context.Context) ([]models.Member, error)
	UpdateDepartment(ctx context.Context, memberID primitive.ObjectID, department string) (*mongo.UpdateResult, error)
	NextMembershipNumber(ctx context.Context) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type memberRepository struct {
	db database.Service
}

func NewMemberRepository(db database.Service) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) collection() *mongo.Collection {
	return r.db.Database().Collection("members")
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	queryType := "create"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	_, err := r.collection().InsertOne(ctx, member)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		if !mongo.IsDuplicateKeyError(err) {
			log.Error().Err(err).Int64("register_number", member.RegisterNumber).Msg("Failed to insert member into database")
		}
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) FindByID(ctx context.Context, memberID primitive.ObjectID) (*models.Member, error) {
	queryType := "findById"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var member models.Member
	err := r.collection().FindOne(ctx, bson.M{"_id": memberID}).Decode(&member)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err // Can be mongo.ErrNoDocuments
	}
	return &member, nil
}

func (r *memberRepository) FindByRegisterNumber(ctx context.Context, registerNumber int64) (*models.Member, error) {
	queryType := "findByRegisterNumber"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var member models.Member
	err := r.collection().FindOne(ctx, bson.M{"registerNumber": registerNumber}).Decode(&member)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	queryType := "findByEmail"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var member models.Member
	err := r.collection().FindOne(ctx, bson.M{"email": email}).Decode(&member)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindAll(ctx context.Context) ([]models.Member, error) {
	queryType := "findAll"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "membershipNumber", Value: 1}})
	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Msg("Failed to list members")
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}
	return members, nil
}

func (r *memberRepository) UpdateDepartment(ctx context.Context, memberID primitive.ObjectID, department string) (*mongo.UpdateResult, error) {
	queryType := "updateDepartment"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	update := bson.M{"$set": bson.M{"department": department, "updatedAt": time.Now()}}
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": memberID}, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("member_id", memberID.Hex()).Msg("Error updating member department")
		return nil, fmt.Errorf("failed to update department: %w", err)
	}
	return result, nil
}

// NextMembershipNumber atomically increments and returns the membership
// sequence from the counters collection.
func (r *memberRepository) NextMembershipNumber(ctx context.Context) (int64, error) {
	queryType := "nextMembershipNumber"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	counters := r.db.Database().Collection("counters")
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "membershipNumber"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Msg("Failed to advance membership number sequence")
		return 0, fmt.Errorf("failed to assign membership number: %w", err)
	}
	return counter.Seq, nil
}

func (r *memberRepository) CountAll(ctx context.Context) (int64, error) {
	queryType := "countAll"
	repository := "member"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	count, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Msg("Failed to count members")
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return count, nil
}
