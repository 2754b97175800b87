// Copyright (c) 2026 Pollhub. All rights reserved.

package polls

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/woolbro/pollhub/internal/platform/middleware"
	requestutil "github.com/woolbro/pollhub/internal/platform/request"
	"github.com/woolbro/pollhub/internal/platform/respond"
	"github.com/woolbro/pollhub/internal/platform/validate"
	"github.com/woolbro/pollhub/pkg/pagination"
)

// Handler implements the HTTP layer for the voting domain.
type Handler struct {
	pollService *Service
}

// NewHandler constructs a new polls [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{pollService: service}
}

// Routes returns a [chi.Router] configured with the voting domain's endpoints.
//
// # Endpoints
//   - GET  /                 : Public paginated discovery.
//   - GET  /{id}             : Public poll detail.
//   - POST /                 : Open a poll (auth required).
//   - POST /{id}/votes       : Cast a vote (auth required).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", handler.create)
		r.Post("/{id}/votes", handler.castVote)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	DurationHours int      `json:"durationHours"`
}

type voteRequest struct {
	ChoiceID int64 `json:"choiceId"`
}

/*
List returns a page of polls.

GET /api/polls?page=1&size=30

Response:
  - 200: Paginated []Poll
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	page, total, err := handler.pollService.List(request.Context(), params, requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page, pagination.NewMeta(params.Page, params.Size, total))
}

/*
Get returns one poll with its vote counts.

GET /api/polls/{id}

Response:
  - 200: Poll
  - 404: Unknown poll
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	pollID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	poll, err := handler.pollService.Get(request.Context(), pollID, requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, poll)
}

/*
Create opens a new poll owned by the caller.

POST /api/polls

Request:
  - Body: createRequest (Question, Choices, DurationHours)

Response:
  - 201: Poll
  - 400: Validation failure
  - 401: Anonymous caller
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(fieldQuestion, input.Question).
		MaxLen(fieldQuestion, input.Question, questionMaxLen).
		Custom(fieldChoices, len(input.Choices) < minChoices || len(input.Choices) > maxChoices,
			"must contain between 2 and 6 choices")
	for _, choice := range input.Choices {
		validator.Required(fieldChoices, choice).
			MaxLen(fieldChoices, choice, choiceMaxLen)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	poll, err := handler.pollService.Create(request.Context(), CreateInput{
		Question:      input.Question,
		Choices:       input.Choices,
		DurationHours: input.DurationHours,
	}, identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, poll)
}

/*
CastVote records the caller's vote.

POST /api/polls/{id}/votes

Request:
  - Body: voteRequest (ChoiceID)

Response:
  - 200: Poll with refreshed counts
  - 400: Expired poll or foreign choice
  - 404: Unknown poll
  - 409: Repeat vote
*/
func (handler *Handler) castVote(writer http.ResponseWriter, request *http.Request) {
	pollID, err := requestutil.IntParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input voteRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Custom(fieldChoiceID, input.ChoiceID <= 0, "must be a positive choice id")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	poll, err := handler.pollService.CastVote(request.Context(), pollID, input.ChoiceID, identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, poll)
}
