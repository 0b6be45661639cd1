package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"relsync/internal/repository"
	"relsync/internal/service"
)

// BlogHandler handles post and tag API requests
type BlogHandler struct {
	svc *service.BlogService
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(svc *service.BlogService) *BlogHandler {
	return &BlogHandler{svc: svc}
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CreatePostRequest is the body of POST /api/posts
type CreatePostRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

// CreatePost creates a post, linking (and creating) the given tags
func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.svc.CreatePost(r.Context(), req.Title, req.Tags)
	if err != nil {
		log.Printf("Failed to create post: %v", err)
		h.writeError(w, "Failed to create post", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, view, http.StatusCreated)
}

// GetPost returns a single post with its tags
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to get post: %v", err)
		h.writeError(w, "Failed to get post", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, view, http.StatusOK)
}

// ListPosts returns all posts
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context())
	if err != nil {
		log.Printf("Failed to list posts: %v", err)
		h.writeError(w, "Failed to list posts", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, posts, http.StatusOK)
}

// DeletePost removes a post and its edges
func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePost(r.Context(), id); err != nil {
		log.Printf("Failed to delete post: %v", err)
		h.writeError(w, "Failed to delete post", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateTagRequest is the body of POST /api/tags
type CreateTagRequest struct {
	Name string `json:"name"`
}

// CreateTag creates a tag
func (h *BlogHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.svc.CreateTag(r.Context(), req.Name)
	if err != nil {
		log.Printf("Failed to create tag: %v", err)
		if errors.Is(err, repository.ErrDuplicate) {
			h.writeError(w, "Tag already exists", err.Error(), http.StatusConflict)
			return
		}
		h.writeError(w, "Failed to create tag", err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, view, http.StatusCreated)
}

// GetTag returns a single tag with its posts
func (h *BlogHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.svc.GetTag(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to get tag: %v", err)
		h.writeError(w, "Failed to get tag", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, view, http.StatusOK)
}

// ListTags returns all tags
func (h *BlogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		log.Printf("Failed to list tags: %v", err)
		h.writeError(w, "Failed to list tags", err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, tags, http.StatusOK)
}

// DeleteTag removes a tag and its edges
func (h *BlogHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTag(r.Context(), id); err != nil {
		log.Printf("Failed to delete tag: %v", err)
		h.writeError(w, "Failed to delete tag", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TagPost links a tag to a post
func (h *BlogHandler) TagPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := h.pathID(w, r, "tagID")
	if !ok {
		return
	}

	if err := h.svc.TagPost(r.Context(), postID, tagID); err != nil {
		if isNotFound(err) {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to tag post: %v", err)
		h.writeError(w, "Failed to tag post", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UntagPost unlinks a tag from a post
func (h *BlogHandler) UntagPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	tagID, ok := h.pathID(w, r, "tagID")
	if !ok {
		return
	}

	if err := h.svc.UntagPost(r.Context(), postID, tagID); err != nil {
		if isNotFound(err) {
			h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to untag post: %v", err)
		h.writeError(w, "Failed to untag post", err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

func (h *BlogHandler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid ID", "numeric ID required", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *BlogHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *BlogHandler) writeError(w http.ResponseWriter, msg, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
