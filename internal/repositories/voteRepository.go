package repositories

import (
	"context"
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

type VoteRepository interface {
	FindByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.Vote, error)
	FindByMemberIDAndOTP(ctx context.Context, memberID primitive.ObjectID, otp int32) (*models.Vote, error)
	// UpsertOTP writes a fresh OTP into the member's vote record, creating
	// the record with done=false when absent. Records with done=true never
	// match the filter; the unique index on memberId then rejects the
	// implied insert with a duplicate-key error.
	UpsertOTP(ctx context.Context, memberID primitive.ObjectID, registerNumber int64, otp int32) error
	// FinalizeBallot is the single conditional update that marks a member
	// as voted. It matches only records with done=false, so concurrent
	// duplicates observe MatchedCount == 0.
	FinalizeBallot(ctx context.Context, memberID primitive.ObjectID, ballot models.Ballot) (int64, error)
}

type voteRepository struct {
	db database.Service
}

func NewVoteRepository(db database.Service) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) collection() *mongo.Collection {
	return r.db.Database().Collection("votes")
}

func (r *voteRepository) FindByMemberID(ctx context.Context, memberID primitive.ObjectID) (*models.Vote, error) {
	queryType := "findByMemberId"
	repository := "vote"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var vote models.Vote
	err := r.collection().FindOne(ctx, bson.M{"memberId": memberID}).Decode(&vote)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err // Can be mongo.ErrNoDocuments
	}
	return &vote, nil
}

func (r *voteRepository) FindByMemberIDAndOTP(ctx context.Context, memberID primitive.ObjectID, otp int32) (*models.Vote, error) {
	queryType := "findByMemberIdAndOtp"
	repository := "vote"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var vote models.Vote
	err := r.collection().FindOne(ctx, bson.M{"memberId": memberID, "otp": otp}).Decode(&vote)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) UpsertOTP(ctx context.Context, memberID primitive.ObjectID, registerNumber int64, otp int32) error {
	queryType := "upsertOtp"
	repository := "vote"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	now := time.Now()
	// memberId and done are equality conditions, so the upsert path copies
	// them into the inserted document without $setOnInsert.
	filter := bson.M{"memberId": memberID, "done": false}
	update := bson.M{
		"$set": bson.M{"otp": otp, "updatedAt": now},
		"$setOnInsert": bson.M{
			"registerNumber": registerNumber,
			"createdAt":      now,
		},
	}

	_, err := r.collection().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		if !mongo.IsDuplicateKeyError(err) {
			log.Error().Err(err).Str("member_id", memberID.Hex()).Msg("Failed to persist OTP on vote record")
		}
		return err
	}
	return nil
}

func (r *voteRepository) FinalizeBallot(ctx context.Context, memberID primitive.ObjectID, ballot models.Ballot) (int64, error) {
	queryType := "finalizeBallot"
	repository := "vote"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	filter := bson.M{"memberId": memberID, "done": false}
	update := bson.M{"$set": bson.M{
		"done":                true,
		"president":           ballot.President,
		"vicePresident":       ballot.VicePresident,
		"secretary":           ballot.Secretary,
		"youthRepresentative": ballot.YouthRepresentative,
		"updatedAt":           time.Now(),
	}}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		log.Error().Err(err).Str("member_id", memberID.Hex()).Msg("Failed to finalize ballot")
		return 0, err
	}
	return result.MatchedCount, nil
}
