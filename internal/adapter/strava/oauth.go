package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"activityweather/internal/domain"
)

// AuthCodeURL returns the platform authorization URL for state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))
}

// ExchangeCode performs the authorization-code grant.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	tok, err := c.oauth.Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return grantFromToken(tok)
}

// RefreshToken exchanges a refresh token for a new access/refresh pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	if refreshToken == "" {
		return nil, errors.New("refresh token: empty refresh token")
	}
	// An empty access token forces the token source to refresh.
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return grantFromToken(tok)
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.http)
}

func grantFromToken(tok *oauth2.Token) (*domain.TokenGrant, error) {
	if tok.AccessToken == "" {
		return nil, errors.New("token response without access_token")
	}
	grant := &domain.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry.UTC(),
	}
	if sec, ok := unixSeconds(tok.Extra("expires_at")); ok {
		grant.ExpiresAt = time.Unix(sec, 0).UTC()
	}
	if raw := tok.Extra("athlete"); raw != nil {
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encode athlete: %w", err)
		}
		if err := json.Unmarshal(b, &grant.Athlete); err != nil {
			return nil, fmt.Errorf("decode athlete: %w", err)
		}
	}
	return grant, nil
}

func unixSeconds(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
