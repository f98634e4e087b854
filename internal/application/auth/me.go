package auth

import (
	"context"

	"github.com/baechuer/accounts-api/internal/domain"
)

func (s *Service) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if !found {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}
