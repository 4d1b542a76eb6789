package mapper

import (
	"fulfillment-be/internal/handler/model"
	"fulfillment-be/internal/user"
)

func MapUser(u *user.User) *model.User {
	return &model.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func MapSession(s *user.Session) *model.Session {
	return &model.Session{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      MapUser(s.User),
	}
}
