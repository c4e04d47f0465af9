package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baseproject/baseproject-go/internal/repository"
)

// ResourceHandler exposes generic CRUD endpoints over any entity store.
// Behavior varies per entity through the store implementation it is given,
// not through handler subclassing.
type ResourceHandler[T repository.Entity] struct {
	store     repository.Store[T]
	newEntity func() T
}

// NewResourceHandler creates a ResourceHandler backed by the given store.
// newEntity allocates a blank entity for request decoding.
func NewResourceHandler[T repository.Entity](store repository.Store[T], newEntity func() T) *ResourceHandler[T] {
	return &ResourceHandler[T]{store: store, newEntity: newEntity}
}

// Mount registers the CRUD routes on the given router.
func (h *ResourceHandler[T]) Mount(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *ResourceHandler[T]) handleList(w http.ResponseWriter, r *http.Request) {
	entities, err := h.store.FindAll(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if entities == nil {
		entities = []T{}
	}
	writeJSON(w, http.StatusOK, entities)
}

func (h *ResourceHandler[T]) handleGet(w http.ResponseWriter, r *http.Request) {
	entity, err := h.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse("not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, entity)
}

func (h *ResourceHandler[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	entity := h.newEntity()
	if !decodeBody(w, r, entity) {
		return
	}

	if err := h.store.Insert(r.Context(), entity); err != nil {
		if isConstraintError(err) {
			writeJSON(w, http.StatusConflict, errorResponse("conflict"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, entity)
}

func (h *ResourceHandler[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	entity := h.newEntity()
	if !decodeBody(w, r, entity) {
		return
	}

	id := chi.URLParam(r, "id")
	if entity.EntityID() == "" {
		entity.SetEntityID(id)
	} else if entity.EntityID() != id {
		writeJSON(w, http.StatusBadRequest, errorResponse("id mismatch"))
		return
	}

	if err := h.store.Update(r.Context(), entity); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		case isConstraintError(err):
			writeJSON(w, http.StatusConflict, errorResponse("conflict"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, entity)
}

func (h *ResourceHandler[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isConstraintError(err error) bool {
	return errors.Is(err, repository.ErrConstraintViolation) ||
		errors.Is(err, repository.ErrDuplicateEmail)
}
