package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Infinite-Loop-Club/club-site-api/internal/config"
	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
	"github.com/Infinite-Loop-Club/club-site-api/internal/repositories"
	"github.com/Infinite-Loop-Club/club-site-api/internal/utils"
)

// VoteService drives the three-step voting flow: request OTP, verify OTP
// for a short-lived token, cast the ballot. A member's vote record is the
// only state; done=true is terminal and rejected at every step.
type VoteService interface {
	RequestOTP(ctx context.Context, registerNumber int64) (primitive.ObjectID, error)
	VerifyOTP(ctx context.Context, memberID primitive.ObjectID, otp int32) (string, error)
	CastVote(ctx context.Context, token string, ballot models.Ballot) error
}

type voteService struct {
	memberRepo   repositories.MemberRepository
	voteRepo     repositories.VoteRepository
	tokenService TokenService
	emailService EmailService
	candidates   config.CandidateRegistry
}

func NewVoteService(
	memberRepo repositories.MemberRepository,
	voteRepo repositories.VoteRepository,
	tokenService TokenService,
	emailService EmailService,
	candidates config.CandidateRegistry,
) VoteService {
	return &voteService{
		memberRepo:   memberRepo,
		voteRepo:     voteRepo,
		tokenService: tokenService,
		emailService: emailService,
		candidates:   candidates,
	}
}

func (s *voteService) RequestOTP(ctx context.Context, registerNumber int64) (primitive.ObjectID, error) {
	member, err := s.memberRepo.FindByRegisterNumber(ctx, registerNumber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Warn().Int64("register_number", registerNumber).Msg("OTP requested for unknown register number")
			return primitive.NilObjectID, ErrNotEligible
		}
		return primitive.NilObjectID, fmt.Errorf("failed to look up member: %w", err)
	}

	vote, err := s.voteRepo.FindByMemberID(ctx, member.ID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, fmt.Errorf("failed to look up vote record: %w", err)
	}
	if vote != nil && vote.Done {
		return primitive.NilObjectID, ErrAlreadyVoted
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to generate OTP: %w", err)
	}

	if err := s.voteRepo.UpsertOTP(ctx, member.ID, member.RegisterNumber, otp); err != nil {
		// The upsert filter skips done=true records; a duplicate-key error
		// here means the record went terminal between the check and now.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrAlreadyVoted
		}
		return primitive.NilObjectID, fmt.Errorf("failed to persist OTP: %w", err)
	}
	utils.OTPIssuedTotal.Inc()

	body := fmt.Sprintf(`
		<h3>Your OTP for Voting is:</h3>
		<h1>%06d</h1>
		<br />
		<p>If you don't know why you're getting this email, please report to 'infiniteloopclub.noreply@gmail.com'</p>
	`, otp)
	if err := s.emailService.SendEmail(member.Email, "OTP for Voting", body); err != nil {
		// OTP is already persisted; the member can retry delivery with a
		// fresh request, which overwrites the code.
		log.Error().Err(err).Str("member_id", member.ID.Hex()).Msg("Failed to send OTP email")
		return primitive.NilObjectID, ErrNotificationFailure
	}

	log.Info().Str("member_id", member.ID.Hex()).Msg("Voting OTP issued")
	return member.ID, nil
}

func (s *voteService) VerifyOTP(ctx context.Context, memberID primitive.ObjectID, otp int32) (string, error) {
	vote, err := s.voteRepo.FindByMemberIDAndOTP(ctx, memberID, otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Wrong code and unknown member are indistinguishable on purpose.
			return "", ErrInvalidOTP
		}
		return "", fmt.Errorf("failed to look up vote record: %w", err)
	}
	if vote.Done {
		return "", ErrAlreadyVoted
	}

	token, err := s.tokenService.IssueVoteToken(vote.MemberID, vote.RegisterNumber)
	if err != nil {
		log.Error().Err(err).Str("member_id", memberID.Hex()).Msg("Failed to sign vote token")
		return "", fmt.Errorf("failed to issue vote token: %w", err)
	}

	log.Info().Str("member_id", memberID.Hex()).Msg("Voting OTP verified, token issued")
	return token, nil
}

func (s *voteService) CastVote(ctx context.Context, token string, ballot models.Ballot) error {
	claims, err := s.tokenService.VerifyVoteToken(token)
	if err != nil {
		return err
	}

	memberID, err := primitive.ObjectIDFromHex(claims.MemberID)
	if err != nil {
		return ErrInvalidToken
	}

	if err := s.validateBallot(ballot); err != nil {
		return err
	}

	matched, err := s.voteRepo.FinalizeBallot(ctx, memberID, ballot)
	if err != nil {
		return fmt.Errorf("failed to finalize ballot: %w", err)
	}
	if matched == 0 {
		// Either the record is already terminal or it never existed.
		if _, err := s.voteRepo.FindByMemberID(ctx, memberID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrInvalidUser
			}
			return fmt.Errorf("failed to look up vote record: %w", err)
		}
		return ErrAlreadyVoted
	}
	utils.VotesCastTotal.Inc()

	log.Info().Str("member_id", memberID.Hex()).Msg("Ballot finalized")
	return nil
}

// validateBallot checks choices against the configured candidate registry.
// Offices with no configured candidates accept any name.
func (s *voteService) validateBallot(ballot models.Ballot) error {
	checks := []struct {
		choice     string
		candidates []string
	}{
		{ballot.President, s.candidates.President},
		{ballot.VicePresident, s.candidates.VicePresident},
		{ballot.Secretary, s.candidates.Secretary},
		{ballot.YouthRepresentative, s.candidates.YouthRepresentative},
	}
	for _, check := range checks {
		if len(check.candidates) == 0 {
			continue
		}
		found := false
		for _, candidate := range check.candidates {
			if candidate == check.choice {
				found = true
				break
			}
		}
		if !found {
			return ErrUnknownCandidate
		}
	}
	return nil
}
