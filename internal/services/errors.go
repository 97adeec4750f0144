package services

import "errors"

// Voting flow errors. Handlers map these onto the HTTP surface; anything
// else coming out of a service is logged and reported as a generic 500.
var (
	// ErrNotEligible: the register number does not belong to any member.
	ErrNotEligible = errors.New("register number not eligible for voting")
	// ErrAlreadyVoted: the member's vote record is terminal (done=true).
	ErrAlreadyVoted = errors.New("member has already voted")
	// ErrInvalidOTP: no vote record matches the member/OTP pair. Covers
	// wrong codes and unknown members alike so membership cannot be probed.
	ErrInvalidOTP = errors.New("invalid OTP")
	// ErrInvalidUser: the token decoded but no vote record exists for it.
	ErrInvalidUser = errors.New("invalid user")
	// ErrTokenExpired: the voting credential outlived its validity window.
	ErrTokenExpired = errors.New("vote token expired")
	// ErrInvalidToken: signature or format failure on the voting credential.
	ErrInvalidToken = errors.New("invalid vote token")
	// ErrNotificationFailure: the OTP was persisted but email dispatch failed.
	ErrNotificationFailure = errors.New("failed to send OTP email")
	// ErrUnknownCandidate: a ballot choice is not in the configured registry.
	ErrUnknownCandidate = errors.New("unknown candidate on ballot")
)

// Directory and post errors.
var (
	ErrDuplicateMember = errors.New("member already registered")
	ErrMemberNotFound  = errors.New("member not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrUnknownField    = errors.New("unknown export field")
)
