package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mmcdole/reel/internal/domain"
)

// Login runs the TMDB username/password flow: request token, validate it
// with the credentials, exchange it for a session, then look up the account.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	var token requestTokenDTO
	if err := c.getJSON(ctx, "authentication/token/new", nil, &token); err != nil {
		return nil, fmt.Errorf("failed to get request token: %w", err)
	}

	var validated requestTokenDTO
	err := c.sendJSON(ctx, http.MethodPost, "authentication/token/validate_with_login", nil,
		loginRequest{Username: username, Password: password, RequestToken: token.RequestToken}, &validated)
	if err != nil {
		return nil, fmt.Errorf("failed to validate login: %w", err)
	}

	var session sessionDTO
	err = c.sendJSON(ctx, http.MethodPost, "authentication/session/new", nil,
		sessionRequest{RequestToken: validated.RequestToken}, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if !session.Success || session.SessionID == "" {
		return nil, domain.ErrAuthFailed
	}

	account, err := c.account(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}

	c.logger.Info("logged in", "username", account.Username, "accountID", account.ID)
	return &domain.AuthResult{
		SessionID: session.SessionID,
		AccountID: account.ID,
		Username:  account.Username,
	}, nil
}

// account returns the account that owns sessionID
func (c *Client) account(ctx context.Context, sessionID string) (*accountDTO, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)

	var account accountDTO
	if err := c.getJSON(ctx, "account", q, &account); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Logout deletes the session on TMDB
func (c *Client) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	var status statusDTO
	if err := c.sendJSON(ctx, http.MethodDelete, "authentication/session", nil, logoutRequest{SessionID: sessionID}, &status); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
