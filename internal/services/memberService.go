package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
	"github.com/Infinite-Loop-Club/club-site-api/internal/repositories"
)

const defaultDepartment = "CSE"

// DuplicateMemberError reports which value collided with an existing member.
type DuplicateMemberError struct {
	Value string
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("%s is already registered", e.Value)
}

func (e *DuplicateMemberError) Is(target error) bool {
	return target == ErrDuplicateMember
}

// MemberService defines the business logic over the member directory.
type MemberService interface {
	RegisterMember(ctx context.Context, member *models.Member) (*models.Member, error)
	GetMemberByID(ctx context.Context, memberID primitive.ObjectID) (*models.Member, error)
	GetMemberByRegisterNumber(ctx context.Context, registerNumber int64) (*models.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	ListMembers(ctx context.Context) ([]models.Member, error)
	CorrectDepartment(ctx context.Context, memberID primitive.ObjectID, department string) (*models.Member, error)
	ExportMembersCSV(ctx context.Context, fields []string) ([]byte, error)
}

var totalMembersGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "app_total_members",
	Help: "Total number of registered club members.",
})

type memberService struct {
	memberRepo repositories.MemberRepository
	validate   *validator.Validate
}

func NewMemberService(memberRepo repositories.MemberRepository) MemberService {
	s := &memberService{
		memberRepo: memberRepo,
		validate:   newValidator(),
	}
	go s.updateTotalMembersPeriodically()
	return s
}

func (s *memberService) updateTotalMembersPeriodically() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		count, err := s.memberRepo.CountAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Error updating total members gauge")
		} else {
			totalMembersGauge.Set(float64(count))
		}
		cancel()
	}
}

func (s *memberService) RegisterMember(ctx context.Context, member *models.Member) (*models.Member, error) {
	log.Debug().Int64("register_number", member.RegisterNumber).Msg("Attempting to register member")
	if err := s.validate.Struct(member); err != nil {
		return nil, err
	}

	if member.Department == "" {
		member.Department = defaultDepartment
	}
	member.ID = primitive.NewObjectID()
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	membershipNumber, err := s.memberRepo.NextMembershipNumber(ctx)
	if err != nil {
		return nil, err
	}
	member.MembershipNumber = membershipNumber

	created, err := s.memberRepo.Create(ctx, member)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			value := strconv.FormatInt(member.RegisterNumber, 10)
			if existing, lookupErr := s.memberRepo.FindByEmail(ctx, member.Email); lookupErr == nil && existing != nil {
				value = member.Email
			}
			log.Warn().Int64("register_number", member.RegisterNumber).Msg("Duplicate member registration rejected")
			return nil, &DuplicateMemberError{Value: value}
		}
		return nil, err
	}

	log.Info().
		Str("member_id", created.ID.Hex()).
		Int64("membership_number", created.MembershipNumber).
		Msg("Member registered successfully")
	if count, err := s.memberRepo.CountAll(ctx); err == nil {
		totalMembersGauge.Set(float64(count))
	}
	return created, nil
}

func (s *memberService) GetMemberByID(ctx context.Context, memberID primitive.ObjectID) (*models.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	return member, nil
}

func (s *memberService) GetMemberByRegisterNumber(ctx context.Context, registerNumber int64) (*models.Member, error) {
	member, err := s.memberRepo.FindByRegisterNumber(ctx, registerNumber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	return member, nil
}

func (s *memberService) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	member, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}
	return member, nil
}

func (s *memberService) ListMembers(ctx context.Context) ([]models.Member, error) {
	return s.memberRepo.FindAll(ctx)
}

func (s *memberService) CorrectDepartment(ctx context.Context, memberID primitive.ObjectID, department string) (*models.Member, error) {
	if department == "" {
		return nil, fmt.Errorf("department is required")
	}

	result, err := s.memberRepo.UpdateDepartment(ctx, memberID, department)
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, ErrMemberNotFound
	}

	log.Info().Str("member_id", memberID.Hex()).Str("department", department).Msg("Member department corrected")
	return s.GetMemberByID(ctx, memberID)
}

// memberCSVColumns maps exportable field names onto row extractors. The
// export is a field projection; anything not listed here is rejected.
var memberCSVColumns = map[string]func(m *models.Member) string{
	"registerNumber":   func(m *models.Member) string { return strconv.FormatInt(m.RegisterNumber, 10) },
	"name":             func(m *models.Member) string { return m.Name },
	"email":            func(m *models.Member) string { return m.Email },
	"gender":           func(m *models.Member) string { return m.Gender },
	"department":       func(m *models.Member) string { return m.Department },
	"phoneNumber":      func(m *models.Member) string { return strconv.FormatInt(m.PhoneNumber, 10) },
	"year":             func(m *models.Member) string { return strconv.Itoa(m.Year) },
	"image":            func(m *models.Member) string { return m.Image },
	"membershipNumber": func(m *models.Member) string { return strconv.FormatInt(m.MembershipNumber, 10) },
}

var defaultCSVFields = []string{
	"membershipNumber", "registerNumber", "name", "email",
	"gender", "department", "phoneNumber", "year",
}

func (s *memberService) ExportMembersCSV(ctx context.Context, fields []string) ([]byte, error) {
	if len(fields) == 0 {
		fields = defaultCSVFields
	}
	for _, field := range fields {
		if _, ok := memberCSVColumns[field]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(fields); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range members {
		row := make([]string, len(fields))
		for j, field := range fields {
			row[j] = memberCSVColumns[field](&members[i])
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
