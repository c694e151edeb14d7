package api

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-sales-client/users"
)

// Sellers manages seller accounts. The backend restricts everything except
// reading your own record to admins.
type Sellers struct {
	r Requester
}

func (s *Sellers) List(ctx context.Context) ([]users.User, error) {
	var out []users.User
	if err := s.r.Get(ctx, RouteSellers, nil, &out); err != nil {
		return nil, fmt.Errorf("[Sellers.List] %w", err)
	}
	return out, nil
}

func (s *Sellers) Get(ctx context.Context, id int) (*users.User, error) {
	var out users.User
	if err := s.r.Get(ctx, withID(RouteSellers, id), nil, &out); err != nil {
		return nil, fmt.Errorf("[Sellers.Get] %w", err)
	}
	return &out, nil
}

func (s *Sellers) Register(ctx context.Context, in SellerInput) (*users.User, error) {
	if err := validatePayload("seller", in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, fmt.Errorf("seller: password is required")
	}
	var out users.User
	if err := s.r.Post(ctx, RouteSellersRegister, in, &out); err != nil {
		return nil, fmt.Errorf("[Sellers.Register] %w", err)
	}
	return &out, nil
}

func (s *Sellers) Update(ctx context.Context, id int, in SellerInput) (*users.User, error) {
	if err := validatePayload("seller", in); err != nil {
		return nil, err
	}
	var out users.User
	if err := s.r.Put(ctx, withID(RouteSellers, id), in, &out); err != nil {
		return nil, fmt.Errorf("[Sellers.Update] %w", err)
	}
	return &out, nil
}

func (s *Sellers) Delete(ctx context.Context, id int) error {
	if err := s.r.Delete(ctx, withID(RouteSellers, id)); err != nil {
		return fmt.Errorf("[Sellers.Delete] %w", err)
	}
	return nil
}
