package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
	"github.com/Infinite-Loop-Club/club-site-api/internal/services"
	"github.com/Infinite-Loop-Club/club-site-api/internal/utils"
)

type VoteHandler struct {
	voteService services.VoteService
}

func NewVoteHandler(voteService services.VoteService) *VoteHandler {
	return &VoteHandler{voteService: voteService}
}

type sendOTPRequest struct {
	RegisterNumber int64 `json:"registerNumber"`
}

type verifyOTPRequest struct {
	UserID string `json:"userID"`
	OTP    int32  `json:"otp"`
}

type makeVoteRequest struct {
	Token               string `json:"token"`
	President           string `json:"president"`
	VicePresident       string `json:"vicePresident"`
	Secretary           string `json:"secretary"`
	YouthRepresentative string `json:"youthRepresentative"`
}

// SendOTP handles POST /api/vote/send-otp. The OTP itself never appears in
// the response; only the member identifier needed for the verify step does.
func (h *VoteHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Register no required !", http.StatusBadRequest)
		return
	}
	if req.RegisterNumber == 0 {
		utils.SendJSONError(w, "Register no required !", http.StatusBadRequest)
		return
	}

	memberID, err := h.voteService.RequestOTP(r.Context(), req.RegisterNumber)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEligible):
			utils.SendJSONError(w, "This register no is not eligible for Voting !", http.StatusUnauthorized)
		case errors.Is(err, services.ErrAlreadyVoted):
			utils.SendJSONError(w, "You have voted already !", http.StatusUnauthorized)
		case errors.Is(err, services.ErrNotificationFailure):
			utils.SendJSONError(w, "Error while sending email ! Please try again later.", http.StatusInternalServerError)
		default:
			log.Error().Err(err).Msg("Failed to issue voting OTP")
			utils.SendJSONError(w, "Error retrieving data", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"done":    true,
		"message": "OTP send successfully",
		"userID":  memberID.Hex(),
	})
}

// VerifyOTP handles POST /api/vote/verify-otp and trades a correct OTP for
// a short-lived voting token.
func (h *VoteHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Fields required !", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.OTP == 0 {
		utils.SendJSONError(w, "Fields required !", http.StatusBadRequest)
		return
	}

	memberID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		// A malformed identifier is indistinguishable from a wrong code.
		utils.SendJSONError(w, "Invalid OTP!", http.StatusUnauthorized)
		return
	}

	token, err := h.voteService.VerifyOTP(r.Context(), memberID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidOTP):
			utils.SendJSONError(w, "Invalid OTP!", http.StatusUnauthorized)
		case errors.Is(err, services.ErrAlreadyVoted):
			utils.SendJSONError(w, "You have voted already !", http.StatusUnauthorized)
		default:
			log.Error().Err(err).Msg("Failed to verify voting OTP")
			utils.SendJSONError(w, "Error retrieving data", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"done":    true,
		"message": "OTP Verified",
		"token":   token,
	})
}

// MakeVote handles POST /api/vote/make and finalizes the ballot.
func (h *VoteHandler) MakeVote(w http.ResponseWriter, r *http.Request) {
	var req makeVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Fields required !", http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.President == "" || req.VicePresident == "" ||
		req.Secretary == "" || req.YouthRepresentative == "" {
		utils.SendJSONError(w, "Fields required !", http.StatusBadRequest)
		return
	}

	ballot := models.Ballot{
		President:           req.President,
		VicePresident:       req.VicePresident,
		Secretary:           req.Secretary,
		YouthRepresentative: req.YouthRepresentative,
	}
	err := h.voteService.CastVote(r.Context(), req.Token, ballot)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			utils.SendJSONError(w, "Request Timeout ! please try again later", http.StatusInternalServerError)
		case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrInvalidUser):
			utils.SendJSONError(w, "Invalid User !", http.StatusInternalServerError)
		case errors.Is(err, services.ErrAlreadyVoted):
			utils.SendJSONError(w, "You have voted already !", http.StatusUnauthorized)
		case errors.Is(err, services.ErrUnknownCandidate):
			utils.SendJSONError(w, "Unknown candidate on ballot !", http.StatusBadRequest)
		default:
			log.Error().Err(err).Msg("Failed to cast vote")
			utils.SendJSONError(w, "Error retrieving data", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"done":    true,
		"message": "Voted Successfully",
	})
}
