// Package strava implements the tracking-platform adapter: activity reads and
// updates, push-subscription management, and the OAuth grants.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"activityweather/internal/domain"
)

// Scope requested at authorization; the platform expects a comma-separated list.
const Scope = "activity:read_all,activity:write"

const maxErrorBody = 500

// HTTPError is returned for non-success responses.
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("strava: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("strava: %s returned %d", e.URL, e.StatusCode)
}

// Config configures a Client.
type Config struct {
	APIURL       string
	OAuthURL     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Client talks to the platform REST API and OAuth endpoints.
type Client struct {
	apiURL       string
	clientID     string
	clientSecret string
	http         *http.Client
	oauth        *oauth2.Config
	logger       *zap.Logger
}

// NewClient creates a Client. A nil httpClient falls back to http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	oauthURL := strings.TrimRight(cfg.OAuthURL, "/")
	return &Client{
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         httpClient,
		logger:       logger,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   oauthURL + "/authorize",
				TokenURL:  oauthURL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// GetActivity fetches one activity on behalf of the token's owner.
func (c *Client) GetActivity(ctx context.Context, accessToken string, activityID int64) (*domain.Activity, error) {
	endpoint := fmt.Sprintf("%s/activities/%d", c.apiURL, activityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var activity domain.Activity
	if err := c.do(req, &activity); err != nil {
		return nil, fmt.Errorf("get activity %d: %w", activityID, err)
	}
	return &activity, nil
}

// UpdateActivity replaces the name and description of an activity.
func (c *Client) UpdateActivity(ctx context.Context, accessToken string, activityID int64, name, description string) error {
	form := url.Values{}
	form.Set("name", name)
	form.Set("description", description)

	endpoint := fmt.Sprintf("%s/activities/%d", c.apiURL, activityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("update activity %d: %w", activityID, err)
	}
	return nil
}

// CreateSubscription registers callbackURL for push events.
func (c *Client) CreateSubscription(ctx context.Context, callbackURL, verifyToken string) (*domain.Subscription, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("callback_url", callbackURL)
	form.Set("verify_token", verifyToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/push_subscriptions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Info("creating push subscription",
		zap.String("client_id", c.clientID),
		zap.String("callback_url", callbackURL))

	var sub domain.Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &sub, nil
}

// ListSubscriptions returns the application's push subscriptions.
func (c *Client) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/push_subscriptions?"+c.clientParams().Encode(), nil)
	if err != nil {
		return nil, err
	}
	var subs []domain.Subscription
	if err := c.do(req, &subs); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// DeleteSubscription removes a push subscription.
func (c *Client) DeleteSubscription(ctx context.Context, subscriptionID int64) error {
	endpoint := c.apiURL + "/push_subscriptions/" + strconv.FormatInt(subscriptionID, 10) + "?" + c.clientParams().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("delete subscription %d: %w", subscriptionID, err)
	}
	return nil
}

func (c *Client) clientParams() url.Values {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	return q
}

// do sends req and decodes a JSON body into dst when dst is non-nil. Field
// matching is case-insensitive.
func (c *Client) do(req *http.Request, dst any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			URL:        req.URL.Path,
		}
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
