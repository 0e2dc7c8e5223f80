package user

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Service applies user updates, hashing new passwords before they reach
// the repository.
type Service struct {
	users Repository
	cost  int
}

// NewService creates a user Service. A zero cost selects bcrypt.DefaultCost.
func NewService(users Repository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{users: users, cost: cost}
}

// Patch hashes p.Password when present and forwards the patch.
func (s *Service) Patch(ctx context.Context, p Patch) error {
	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), s.cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hashed := string(hash)
		p.Password = &hashed
	}
	if err := s.users.Update(ctx, p); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
