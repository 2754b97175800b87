// Copyright (c) 2026 Pollhub. All rights reserved.

package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/woolbro/pollhub/internal/platform/constants"
	requestutil "github.com/woolbro/pollhub/internal/platform/request"
	"github.com/woolbro/pollhub/internal/platform/respond"
	"github.com/woolbro/pollhub/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// This layer is strictly responsible for transport concerns (status codes,
// headers, JSON). The signin and signup responses use fixed wire shapes that
// existing API clients depend on, so they bypass the standard envelope.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signin : Authenticates and returns a bearer token.
//   - POST /signup : Creates a new account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signin", handler.signIn)
	router.Post("/signup", handler.signUp)

	return router
}

// # Request Payloads

type signInRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type signUpRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// # Response Payloads

// jwtResponse is the fixed signin wire shape.
type jwtResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// apiResponse is the fixed signup wire shape, used for both the success and
// the duplicate-identity outcomes.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/*
SignIn authenticates a user and issues a bearer token.

POST /api/auth/signin

Request:
  - Body: signInRequest (UsernameOrEmail, Password)

Response:
  - 200: jwtResponse: Signed access token with its scheme
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	var input signInRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(fieldUsername, input.UsernameOrEmail).
		Required(fieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.SignIn(request.Context(), SignInInput{
		UsernameOrEmail: input.UsernameOrEmail,
		Password:        input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, jwtResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
	})
}

/*
SignUp creates a new account.

POST /api/auth/signup

Description: Validates input, registers the account with the default role and
points the Location header at the new profile resource.

Request:
  - Body: signUpRequest (Name, Username, Email, Password)

Response:
  - 201: apiResponse: success=true, Location header set
  - 400: apiResponse: success=false with the duplicate-identity message, or
    ErrInvalidJSON / validation failure
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	var input signUpRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(fieldName, input.Name).
		MaxLen(fieldName, input.Name, nameMaxLen).
		Required(fieldUsername, input.Username).
		MinLen(fieldUsername, input.Username, usernameMinLen).
		MaxLen(fieldUsername, input.Username, usernameMaxLen).
		Username(fieldUsername, input.Username).
		Required(fieldEmail, input.Email).
		MaxLen(fieldEmail, input.Email, emailMaxLen).
		Email(fieldEmail, input.Email).
		Required(fieldPassword, input.Password).
		MinLen(fieldPassword, input.Password, passwordMinLen).
		MaxLen(fieldPassword, input.Password, passwordMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.SignUp(request.Context(), SignUpInput{
		Name:     input.Name,
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		// Duplicate identities use the fixed wire shape with their exact
		// messages. Everything else goes through the standard error path.
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			respond.JSON(writer, http.StatusBadRequest, apiResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set(constants.HeaderLocation, fmt.Sprintf("/api/users/%s", user.Username))
	respond.JSON(writer, http.StatusCreated, apiResponse{
		Success: true,
		Message: "User registered successfully",
	})
}
