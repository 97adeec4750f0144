package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Infinite-Loop-Club/club-site-api/internal/models"
	"github.com/Infinite-Loop-Club/club-site-api/internal/services"
	"github.com/Infinite-Loop-Club/club-site-api/internal/utils"
)

type PostHandler struct {
	postService services.PostService
}

func NewPostHandler(postService services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		utils.SendJSONError(w, "Invalid post data input: "+err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.postService.CreatePost(r.Context(), &post)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			utils.SendJSONError(w, validationMessage(validationErrs), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Msg("Failed to create post")
		utils.SendJSONError(w, "Could not create post", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully posted",
		"data":    created,
	})
}

func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListPosts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		utils.SendJSONError(w, "Error retrieving posts", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "All posts",
		"data":    posts,
	})
}

func (h *PostHandler) GetPostByID(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	postID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.SendJSONError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}

	post, err := h.postService.GetPost(r.Context(), postID)
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.SendJSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("Failed to fetch post")
		utils.SendJSONError(w, "Error retrieving post", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Post retrieved",
		"data":    post,
	})
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	postID, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		utils.SendJSONError(w, "Invalid ID format", http.StatusBadRequest)
		return
	}

	if err := h.postService.DeletePost(r.Context(), postID); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			utils.SendJSONError(w, "Post not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("Failed to delete post")
		utils.SendJSONError(w, "Could not delete post", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully deleted",
	})
}
