package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Infinite-Loop-Club/club-site-api/internal/config"
	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
)

const testRegisterNumber = int64(810018104080)

type fakeMemberRepo struct {
	members map[int64]*models.Member
	seq     int64
}

func newFakeMemberRepo(members ...*models.Member) *fakeMemberRepo {
	r := &fakeMemberRepo{members: make(map[int64]*models.Member)}
	for _, m := range members {
		r.members[m.RegisterNumber] = m
	}
	return r
}

func (r *fakeMemberRepo) Create(_ context.Context, member *models.Member) (*models.Member, error) {
	for _, existing := range r.members {
		if existing.RegisterNumber == member.RegisterNumber || existing.Email == member.Email {
			return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		}
	}
	r.members[member.RegisterNumber] = member
	return member, nil
}

func (r *fakeMemberRepo) FindByID(_ context.Context, memberID primitive.ObjectID) (*models.Member, error) {
	for _, m := range r.members {
		if m.ID == memberID {
			return m, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeMemberRepo) FindByRegisterNumber(_ context.Context, registerNumber int64) (*models.Member, error) {
	if m, ok := r.members[registerNumber]; ok {
		return m, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeMemberRepo) FindByEmail(_ context.Context, email string) (*models.Member, error) {
	for _, m := range r.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeMemberRepo) FindAll(_ context.Context) ([]models.Member, error) {
	var out []models.Member
	for _, m := range r.members {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMemberRepo) UpdateDepartment(_ context.Context, memberID primitive.ObjectID, department string) (*mongo.UpdateResult, error) {
	for _, m := range r.members {
		if m.ID == memberID {
			m.Department = department
			return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return &mongo.UpdateResult{}, nil
}

func (r *fakeMemberRepo) NextMembershipNumber(_ context.Context) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *fakeMemberRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.members)), nil
}

type fakeVoteRepo struct {
	votes map[primitive.ObjectID]*models.Vote
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[primitive.ObjectID]*models.Vote)}
}

func (r *fakeVoteRepo) FindByMemberID(_ context.Context, memberID primitive.ObjectID) (*models.Vote, error) {
	if v, ok := r.votes[memberID]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeVoteRepo) FindByMemberIDAndOTP(_ context.Context, memberID primitive.ObjectID, otp int32) (*models.Vote, error) {
	if v, ok := r.votes[memberID]; ok && v.OTP != nil && *v.OTP == otp {
		copied := *v
		return &copied, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeVoteRepo) UpsertOTP(_ context.Context, memberID primitive.ObjectID, registerNumber int64, otp int32) error {
	if v, ok := r.votes[memberID]; ok {
		if v.Done {
			return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		}
		v.OTP = &otp
		return nil
	}
	r.votes[memberID] = &models.Vote{
		ID:             primitive.NewObjectID(),
		MemberID:       memberID,
		RegisterNumber: registerNumber,
		OTP:            &otp,
	}
	return nil
}

func (r *fakeVoteRepo) FinalizeBallot(_ context.Context, memberID primitive.ObjectID, ballot models.Ballot) (int64, error) {
	v, ok := r.votes[memberID]
	if !ok || v.Done {
		return 0, nil
	}
	v.Done = true
	v.President = ballot.President
	v.VicePresident = ballot.VicePresident
	v.Secretary = ballot.Secretary
	v.YouthRepresentative = ballot.YouthRepresentative
	return 1, nil
}

type fakeEmailService struct {
	fail bool
	sent []string
}

func (s *fakeEmailService) SendEmail(to, subject, htmlBody string) error {
	if s.fail {
		return errors.New("smtp dial failed")
	}
	s.sent = append(s.sent, to)
	return nil
}

type voteFixture struct {
	member     *models.Member
	memberRepo *fakeMemberRepo
	voteRepo   *fakeVoteRepo
	email      *fakeEmailService
	service    VoteService
}

func newVoteFixture(candidates config.CandidateRegistry) *voteFixture {
	member := &models.Member{
		ID:             primitive.NewObjectID(),
		RegisterNumber: testRegisterNumber,
		Name:           "Test Member",
		Email:          "member@example.com",
	}
	f := &voteFixture{
		member:     member,
		memberRepo: newFakeMemberRepo(member),
		voteRepo:   newFakeVoteRepo(),
		email:      &fakeEmailService{},
	}
	f.service = NewVoteService(f.memberRepo, f.voteRepo, NewTokenService(testSecret), f.email, candidates)
	return f
}

func TestRequestOTPCreatesRecord(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	memberID, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, memberID)

	vote := f.voteRepo.votes[f.member.ID]
	require.NotNil(t, vote)
	assert.False(t, vote.Done)
	require.NotNil(t, vote.OTP)
	assert.GreaterOrEqual(t, *vote.OTP, int32(100000))
	assert.LessOrEqual(t, *vote.OTP, int32(999999))
	assert.Equal(t, testRegisterNumber, vote.RegisterNumber)
	assert.Equal(t, []string{"member@example.com"}, f.email.sent)
}

func TestRequestOTPOverwritesExistingOTP(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	_, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	require.NoError(t, err)
	first := *f.voteRepo.votes[f.member.ID].OTP

	for i := 0; i < 20; i++ {
		_, err = f.service.RequestOTP(context.Background(), testRegisterNumber)
		require.NoError(t, err)
		if *f.voteRepo.votes[f.member.ID].OTP != first {
			break
		}
	}

	vote := f.voteRepo.votes[f.member.ID]
	assert.NotEqual(t, first, *vote.OTP)
	assert.False(t, vote.Done)
}

func TestRequestOTPUnknownRegisterNumber(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	_, err := f.service.RequestOTP(context.Background(), 810099999999)
	assert.ErrorIs(t, err, ErrNotEligible)
	assert.Empty(t, f.voteRepo.votes)
	assert.Empty(t, f.email.sent)
}

func TestRequestOTPAfterVoting(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})
	f.voteRepo.votes[f.member.ID] = &models.Vote{
		MemberID:       f.member.ID,
		RegisterNumber: testRegisterNumber,
		Done:           true,
	}

	_, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Empty(t, f.email.sent)
}

func TestRequestOTPEmailFailureKeepsOTP(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})
	f.email.fail = true

	_, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	assert.ErrorIs(t, err, ErrNotificationFailure)

	vote := f.voteRepo.votes[f.member.ID]
	require.NotNil(t, vote)
	assert.NotNil(t, vote.OTP)
	assert.False(t, vote.Done)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	_, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	require.NoError(t, err)

	otp := *f.voteRepo.votes[f.member.ID].OTP
	wrong := otp + 1
	if wrong > 999999 {
		wrong = 100000
	}

	_, err = f.service.VerifyOTP(context.Background(), f.member.ID, wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTPUnknownMember(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	_, err := f.service.VerifyOTP(context.Background(), primitive.NewObjectID(), 123456)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTPIssuesTokenForMember(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	_, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	require.NoError(t, err)
	otp := *f.voteRepo.votes[f.member.ID].OTP

	token, err := f.service.VerifyOTP(context.Background(), f.member.ID, otp)
	require.NoError(t, err)

	claims, err := NewTokenService(testSecret).VerifyVoteToken(token)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID.Hex(), claims.MemberID)
	assert.Equal(t, testRegisterNumber, claims.RegisterNumber)

	// The OTP is not consumed by verification; it stays valid until the
	// vote is cast or a fresh code overwrites it.
	_, err = f.service.VerifyOTP(context.Background(), f.member.ID, otp)
	assert.NoError(t, err)
}

func TestCastVoteFullFlow(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	memberID, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	require.NoError(t, err)
	otp := *f.voteRepo.votes[memberID].OTP

	token, err := f.service.VerifyOTP(context.Background(), memberID, otp)
	require.NoError(t, err)

	ballot := models.Ballot{
		President:           "Alice",
		VicePresident:       "Bob",
		Secretary:           "Carol",
		YouthRepresentative: "Dave",
	}
	require.NoError(t, f.service.CastVote(context.Background(), token, ballot))

	vote := f.voteRepo.votes[memberID]
	assert.True(t, vote.Done)
	assert.Equal(t, "Alice", vote.President)
	assert.Equal(t, "Bob", vote.VicePresident)
	assert.Equal(t, "Carol", vote.Secretary)
	assert.Equal(t, "Dave", vote.YouthRepresentative)

	// Replaying the same still-valid token must not double count.
	err = f.service.CastVote(context.Background(), token, models.Ballot{
		President:           "Mallory",
		VicePresident:       "Mallory",
		Secretary:           "Mallory",
		YouthRepresentative: "Mallory",
	})
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, "Alice", f.voteRepo.votes[memberID].President)

	// Every subsequent step is rejected once the record is terminal.
	_, err = f.service.RequestOTP(context.Background(), testRegisterNumber)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	_, err = f.service.VerifyOTP(context.Background(), memberID, otp)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestCastVoteExpiredToken(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	memberID, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	require.NoError(t, err)

	token := expiredVoteToken(t, memberID)
	err = f.service.CastVote(context.Background(), token, models.Ballot{
		President:           "Alice",
		VicePresident:       "Bob",
		Secretary:           "Carol",
		YouthRepresentative: "Dave",
	})
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, f.voteRepo.votes[memberID].Done)
}

func TestCastVoteUnknownMember(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{})

	token, err := NewTokenService(testSecret).IssueVoteToken(primitive.NewObjectID(), testRegisterNumber)
	require.NoError(t, err)

	err = f.service.CastVote(context.Background(), token, models.Ballot{
		President:           "Alice",
		VicePresident:       "Bob",
		Secretary:           "Carol",
		YouthRepresentative: "Dave",
	})
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestCastVoteUnknownCandidate(t *testing.T) {
	f := newVoteFixture(config.CandidateRegistry{
		President: []string{"Alice", "Eve"},
	})

	memberID, err := f.service.RequestOTP(context.Background(), testRegisterNumber)
	require.NoError(t, err)
	otp := *f.voteRepo.votes[memberID].OTP
	token, err := f.service.VerifyOTP(context.Background(), memberID, otp)
	require.NoError(t, err)

	err = f.service.CastVote(context.Background(), token, models.Ballot{
		President:           "Mallory",
		VicePresident:       "Bob",
		Secretary:           "Carol",
		YouthRepresentative: "Dave",
	})
	assert.ErrorIs(t, err, ErrUnknownCandidate)
	assert.False(t, f.voteRepo.votes[memberID].Done)

	// A registered candidate passes; unconfigured offices accept any name.
	err = f.service.CastVote(context.Background(), token, models.Ballot{
		President:           "Alice",
		VicePresident:       "Bob",
		Secretary:           "Carol",
		YouthRepresentative: "Dave",
	})
	assert.NoError(t, err)
}
