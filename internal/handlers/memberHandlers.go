package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
	"github.com/Infinite-Loop-Club/club-site-api/internal/services"
	"github.com/Infinite-Loop-Club/club-site-api/internal/utils"
)

type MemberHandler struct {
	memberService services.MemberService
}

func NewMemberHandler(memberService services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// validationMessage renders the first failed validation in the wire format
// registration clients expect.
func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Validation Error"
	}
	field := errs[0].Field()
	if errs[0].Tag() == "required" {
		return fmt.Sprintf("Validation Error: '%s' is required", field)
	}
	return fmt.Sprintf("Validation Error: '%s' is invalid", field)
}

func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var member models.Member
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		log.Error().Err(err).Msg("Invalid member data input for Register")
		utils.SendJSONError(w, "Invalid member data input: "+err.Error(), http.StatusBadRequest)
		return
	}

	registered, err := h.memberService.RegisterMember(r.Context(), &member)
	if err != nil {
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			utils.SendJSONError(w, validationMessage(validationErrs), http.StatusBadRequest)
		case errors.Is(err, services.ErrDuplicateMember):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Error().Err(err).Msg("Failed to register member")
			utils.SendJSONError(w, "Could not complete registration", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully registered",
		"data":    registered,
	})
}

func (h *MemberHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.ListMembers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list members")
		utils.SendJSONError(w, "Error retrieving members", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All members",
		"data":    members,
	})
}

func (h *MemberHandler) GetMemberByID(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	memberID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.SendJSONError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}

	member, err := h.memberService.GetMemberByID(r.Context(), memberID)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	h.respondMember(w, member)
}

func (h *MemberHandler) GetMemberByRegisterNumber(w http.ResponseWriter, r *http.Request) {
	regStr := mux.Vars(r)["registerNumber"]
	registerNumber, err := strconv.ParseInt(regStr, 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid register number format", http.StatusBadRequest)
		return
	}

	member, err := h.memberService.GetMemberByRegisterNumber(r.Context(), registerNumber)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	h.respondMember(w, member)
}

func (h *MemberHandler) GetMemberByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	member, err := h.memberService.GetMemberByEmail(r.Context(), email)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	h.respondMember(w, member)
}

func (h *MemberHandler) CorrectDepartment(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	memberID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.SendJSONError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}

	var payload models.DepartmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if payload.Department == "" {
		utils.SendJSONError(w, "Validation Error: 'department' is required", http.StatusBadRequest)
		return
	}

	member, err := h.memberService.CorrectDepartment(r.Context(), memberID, payload.Department)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Department updated",
		"data":    member,
	})
}

// ExportMembers streams a CSV projection of the directory. Fields come from
// the comma-separated "fields" query parameter; the default set covers the
// roster columns.
func (h *MemberHandler) ExportMembers(w http.ResponseWriter, r *http.Request) {
	var fields []string
	if raw := r.URL.Query().Get("fields"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(field); trimmed != "" {
				fields = append(fields, trimmed)
			}
		}
	}

	data, err := h.memberService.ExportMembersCSV(r.Context(), fields)
	if err != nil {
		if errors.Is(err, services.ErrUnknownField) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Failed to export members")
		utils.SendJSONError(w, "Error exporting members", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="members.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error().Err(err).Msg("Failed to write CSV response")
	}
}

func (h *MemberHandler) respondMember(w http.ResponseWriter, member *models.Member) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Member retrieved",
		"data":    member,
	})
}

func (h *MemberHandler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrMemberNotFound) {
		utils.SendJSONError(w, "Member not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Msg("Failed to fetch member")
	utils.SendJSONError(w, "Error retrieving data", http.StatusInternalServerError)
}
