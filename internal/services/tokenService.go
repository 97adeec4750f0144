package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoteTokenTTL is the validity window of a voting credential. A voter who
// lets it lapse has to restart from the OTP request.
const VoteTokenTTL = 15 * time.Minute

// VoteClaims is the identity carried by a voting credential.
type VoteClaims struct {
	MemberID       string `json:"id"`
	RegisterNumber int64  `json:"registerNumber"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the short-lived credential issued after a
// successful OTP check and redeemed at vote-casting time.
type TokenService interface {
	IssueVoteToken(memberID primitive.ObjectID, registerNumber int64) (string, error)
	VerifyVoteToken(token string) (*VoteClaims, error)
}

type tokenService struct {
	secret []byte
}

func NewTokenService(secret string) TokenService {
	return &tokenService{secret: []byte(secret)}
}

func (t *tokenService) IssueVoteToken(memberID primitive.ObjectID, registerNumber int64) (string, error) {
	claims := &VoteClaims{
		MemberID:       memberID.Hex(),
		RegisterNumber: registerNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(VoteTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *tokenService) VerifyVoteToken(tokenString string) (*VoteClaims, error) {
	claims := &VoteClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
