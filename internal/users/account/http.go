// Copyright (c) 2026 Pollhub. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/woolbro/pollhub/internal/platform/middleware"
	requestutil "github.com/woolbro/pollhub/internal/platform/request"
	"github.com/woolbro/pollhub/internal/platform/respond"
	"github.com/woolbro/pollhub/internal/platform/validate"
)

// Handler implements the HTTP layer for profile reads and availability probes.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
//
// # Endpoints
//   - GET /user/checkUsernameAvailability : Public signup-form probe.
//   - GET /user/checkEmailAvailability   : Public signup-form probe.
//   - GET /user/me                       : Caller's own summary (auth required).
//   - GET /users/{username}              : Public profile with stats.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/user/checkUsernameAvailability", handler.checkUsernameAvailability)
	router.Get("/user/checkEmailAvailability", handler.checkEmailAvailability)
	router.Get("/users/{username}", handler.getProfile)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/user/me", handler.getMe)
	})

	return router
}

/*
CheckUsernameAvailability probes whether a username is free.

GET /api/user/checkUsernameAvailability?username=bob

Response:
  - 200: Availability
  - 400: Missing username parameter
*/
func (handler *Handler) checkUsernameAvailability(writer http.ResponseWriter, request *http.Request) {
	username := request.URL.Query().Get("username")
	if username == "" {
		respond.Error(writer, request, validate.RequiredError("username", "username query parameter is required"))
		return
	}

	availability, err := handler.accountService.CheckUsernameAvailability(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, availability)
}

/*
CheckEmailAvailability probes whether an email address is free.

GET /api/user/checkEmailAvailability?email=bob@example.com

Response:
  - 200: Availability
  - 400: Missing email parameter
*/
func (handler *Handler) checkEmailAvailability(writer http.ResponseWriter, request *http.Request) {
	email := request.URL.Query().Get("email")
	if email == "" {
		respond.Error(writer, request, validate.RequiredError("email", "email query parameter is required"))
		return
	}

	availability, err := handler.accountService.CheckEmailAvailability(request.Context(), email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, availability)
}

/*
GetMe returns the caller's own summary.

GET /api/user/me

Response:
  - 200: UserSummary
  - 401: Missing or unresolved identity
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.accountService.Me(request.Context(), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}

/*
GetProfile returns the public profile of an account.

GET /api/users/{username}

Response:
  - 200: UserProfile
  - 404: Unknown username
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	username := requestutil.Param(request, "username")

	profile, err := handler.accountService.Profile(request.Context(), username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
