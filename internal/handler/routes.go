package handler

import (
	"net/http"

	"github.com/JuNicky/Rabobank-Technical-Assessment/internal/service"
)

// Deps bundles what RegisterRoutes needs. Metrics and Limiter are optional.
type Deps struct {
	Books   *service.BookService
	Users   *service.UserService
	Lending *service.LendingService
	DB      Pinger
	Metrics http.Handler
	Limiter Limiter
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	bookH := NewBookHandler(d.Books, d.Lending)
	userH := NewUserHandler(d.Users)

	// mutating wraps write routes in the rate limiter when one is configured.
	mutating := func(h http.HandlerFunc) http.Handler {
		if d.Limiter == nil {
			return h
		}
		return RateLimit(d.Limiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(d.DB))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}

	// Books
	mux.HandleFunc("GET /books", bookH.HandleList)
	mux.HandleFunc("GET /books/search", bookH.HandleSearch)
	mux.HandleFunc("GET /books/user/{userId}", bookH.HandleListByUser)
	mux.HandleFunc("GET /books/{id}", bookH.HandleGet)
	mux.Handle("POST /books", mutating(bookH.HandleCreate))
	mux.Handle("PUT /books/{id}", mutating(bookH.HandleUpdate))
	mux.Handle("DELETE /books/{id}", mutating(bookH.HandleDelete))
	mux.Handle("PUT /books/borrow/{id}/{userId}", mutating(bookH.HandleBorrow))
	mux.Handle("PUT /books/return/{id}", mutating(bookH.HandleReturn))

	// Users
	mux.HandleFunc("GET /users", userH.HandleList)
	mux.HandleFunc("GET /users/{id}", userH.HandleGet)
	mux.Handle("POST /users", mutating(userH.HandleCreate))
}

// Wrap applies the standard middleware chain around mux. obs may be nil.
func Wrap(mux *http.ServeMux, obs RequestObserver) http.Handler {
	return SecurityHeaders(RequestID(Instrument(obs, mux)))
}
