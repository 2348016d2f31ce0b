package handler

import (
	"net/http"
	"strconv"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/service"
)

// BookHandler handles book catalog and lending HTTP requests.
type BookHandler struct {
	books   *service.BookService
	lending *service.LendingService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(books *service.BookService, lending *service.LendingService) *BookHandler {
	return &BookHandler{books: books, lending: lending}
}

// HandleList returns every book.
// GET /books
func (h *BookHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		writeReadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTOs(books))
}

// HandleGet returns a single book.
// GET /books/{id}
func (h *BookHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		writeReadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(book))
}

// HandleListByUser returns the books currently lent to a user.
// GET /books/user/{userId}
func (h *BookHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	books, err := h.books.ListByBorrower(r.Context(), userID)
	if err != nil {
		writeReadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTOs(books))
}

// HandleSearch matches books by title and/or author. An empty result is
// answered with 204.
// GET /books/search?title=...&author=...
func (h *BookHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var title, author *string
	if q.Has("title") {
		v := q.Get("title")
		title = &v
	}
	if q.Has("author") {
		v := q.Get("author")
		author = &v
	}

	books, err := h.books.Search(r.Context(), title, author)
	if err != nil {
		writeReadError(w, r, err)
		return
	}
	if len(books) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTOs(books))
}

// HandleCreate adds a book to the catalog.
// POST /books
// Request:  {"id":1,"title":"...","author":"...","available":true,"borrowerId":null}
// Response: the stored book
func (h *BookHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	book, err := h.books.Create(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusCreated, toBookDTO(book))
}

// HandleUpdate replaces the title and author of a book. Lending fields in
// the body are ignored.
// PUT /books/{id}
func (h *BookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req BookRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	book := req.toDomain()
	book.ID = id

	updated, err := h.books.Update(r.Context(), book)
	if err != nil {
		writeServiceError(w, r, err, http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(updated))
}

// HandleDelete removes a book.
// DELETE /books/{id}
func (h *BookHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.books.Remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err, http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleBorrow lends a book to a user.
// PUT /books/borrow/{id}/{userId}
func (h *BookHandler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	book, err := h.lending.Borrow(r.Context(), id, userID)
	if err != nil {
		writeServiceError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(book))
}

// HandleReturn takes a lent book back.
// PUT /books/return/{id}
func (h *BookHandler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.lending.Return(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, toBookDTO(book))
}

// pathID parses the named path value as an int64, writing a 400 if it is
// malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name+": "+r.PathValue(name))
		return 0, false
	}
	return id, true
}
