// Copyright (c) 2026 Pollhub. All rights reserved.

package account

import (
	"context"

	"github.com/woolbro/pollhub/internal/platform/sec"
	"github.com/woolbro/pollhub/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile reads and signup-form availability probes.
type Service struct {
	userRepository  auth.UserRepository
	statsRepository StatsRepository
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(userRepo auth.UserRepository, statsRepo StatsRepository) *Service {
	return &Service{
		userRepository:  userRepo,
		statsRepository: statsRepo,
	}
}

/*
CheckUsernameAvailability reports whether a username is free to register.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Availability: available=true when no account holds the username
  - error: Storage failures
*/
func (service *Service) CheckUsernameAvailability(context context.Context, username string) (*Availability, error) {
	taken, err := service.userRepository.ExistsByUsername(context, username)
	if err != nil {
		return nil, err
	}
	return &Availability{Available: !taken}, nil
}

/*
CheckEmailAvailability reports whether an email address is free to register.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Availability: available=true when no account holds the email
  - error: Storage failures
*/
func (service *Service) CheckEmailAvailability(context context.Context, email string) (*Availability, error) {
	registered, err := service.userRepository.ExistsByEmail(context, email)
	if err != nil {
		return nil, err
	}
	return &Availability{Available: !registered}, nil
}

/*
Me returns the caller's own identity summary.

Description: Reads from the resolved request identity plus the account row,
so a stale token cannot fabricate a summary for a deleted account.

Parameters:
  - context: context.Context
  - identity: *sec.Identity (the resolved caller)

Returns:
  - *UserSummary: The caller's summary
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Me(context context.Context, identity *sec.Identity) (*UserSummary, error) {
	user, err := service.userRepository.FindByID(context, identity.UserID)
	if err != nil {
		return nil, err
	}
	return &UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

/*
Profile returns the public profile of an account by username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *UserProfile: Public projection with poll and vote counts
  - error: apperr.NotFound or storage failures
*/
func (service *Service) Profile(context context.Context, username string) (*UserProfile, error) {
	return service.statsRepository.ProfileByUsername(context, username)
}
