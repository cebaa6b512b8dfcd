package users

import "context"

// Repository stores internal user records keyed by the lower-cased username.
//
// Add inserts or overwrites; callers that need "already exists" semantics
// must pre-check with GetByUsername. GetByUsername is case-insensitive and
// reports a missing user as common.ErrorNotFound, never as a panic or a nil
// result. List returns a snapshot copy.
type Repository interface {
	Add(ctx context.Context, user *InternalUser) error
	GetByUsername(ctx context.Context, username string) (*InternalUser, error)
	List(ctx context.Context) ([]*InternalUser, error)
}
