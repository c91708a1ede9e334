package user

import (
	"context"

	domainuser "threadly/internal/domain/user"
	"threadly/internal/realtime"
)

// IdentityResolver adapts the user repository to the realtime pipeline's
// display-name lookup.
type IdentityResolver struct {
	Users domainuser.Repository
}

var _ realtime.IdentityResolver = IdentityResolver{}

func (r IdentityResolver) Resolve(ctx context.Context, userID string) (realtime.Identity, error) {
	u, err := r.Users.ByID(ctx, domainuser.ID(userID))
	if err != nil {
		return realtime.Identity{}, err
	}
	return realtime.Identity{Name: u.Name, Avatar: u.Avatar}, nil
}
