package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/users"
	"golang.org/x/oauth2"
)

// LoginResponse is the backend's answer to a successful login
type LoginResponse struct {
	AccessToken string
	TokenType   string
	User        *users.User
}

// Login posts the password form to /auth/login. Login requests carry no
// bearer token and a 401 here is a credential rejection, so they bypass the
// auth failure interceptor. A rejection comes back as *APIError whose
// message is the backend's detail string; a 401 also matches
// ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, creds users.Credentials) (*LoginResponse, error) {
	if err := creds.Validate(); err != nil {
		return nil, apperrors.Join(apperrors.ErrInvalidRequest, err)
	}

	cfg := oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + RouteAuthLogin,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.loginClient)

	tok, err := cfg.PasswordCredentialsToken(ctx, creds.Email, creds.Password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			apiErr := newAPIError(retrieveErr.Response.StatusCode, retrieveErr.Body)
			apiErr.login = true
			return nil, apiErr
		}
		return nil, fmt.Errorf("[gateway Login] %w", err)
	}

	user, err := decodeExtraUser(tok.Extra("usuario"))
	if err != nil {
		return nil, fmt.Errorf("[gateway Login] %w", err)
	}

	return &LoginResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.Type(),
		User:        user,
	}, nil
}

// Me fetches the profile of the user the stored token belongs to
func (c *Client) Me(ctx context.Context) (*users.User, error) {
	var user users.User
	if err := c.Get(ctx, RouteAuthMe, nil, &user); err != nil {
		return nil, err
	}
	if user.Email == "" && user.ID == 0 {
		return nil, fmt.Errorf("[gateway Me] empty user in response")
	}
	return &user, nil
}

func decodeExtraUser(extra any) (*users.User, error) {
	if extra == nil {
		return nil, errors.New("login response missing usuario")
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("re-encode usuario: %w", err)
	}
	var user users.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decode usuario: %w", err)
	}
	return &user, nil
}
