// Package steam implements the confirmation service against the Steam
// community mobileconf endpoints.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
)

const (
	communityBaseURL = "https://steamcommunity.com"
	apiBaseURL       = "https://api.steampowered.com"
)

// Wire confirmation types. Anything unrecognized is presented as a
// generic confirmation and never auto-resolved.
const (
	wireTypeTrade         = 2
	wireTypeMarketListing = 3
)

// KeySource produces the time-keyed confirmation parameters required by
// the mobileconf endpoints. The one-time-code generator behind it is an
// external collaborator; this package never touches secret material.
type KeySource interface {
	ConfirmationKey(ctx context.Context, account *model.Account, t time.Time, tag string) (string, error)
}

// Client talks to the Steam mobileconf and authentication endpoints. It
// implements service.ConfirmationService.
type Client struct {
	httpClient   *http.Client
	keys         KeySource
	communityURL string
	apiURL       string
}

// NewClient creates a Steam client using the given key source.
func NewClient(keys KeySource) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		keys:         keys,
		communityURL: communityBaseURL,
		apiURL:       apiBaseURL,
	}
}

// confirmation is one entry of the mobileconf list response.
type confirmation struct {
	Type     int      `json:"type"`
	TypeName string   `json:"type_name"`
	ID       string   `json:"id"`
	Creator  string   `json:"creator_id"`
	Nonce    string   `json:"nonce"`
	Headline string   `json:"headline"`
	Summary  []string `json:"summary"`
	Icon     string   `json:"icon"`
	Accept   string   `json:"accept"`
	Cancel   string   `json:"cancel"`
}

type confirmationList struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Conf    []confirmation `json:"conf"`
}

type operationResult struct {
	Success bool `json:"success"`
}

// ListConfirmations fetches the account's pending confirmations.
func (c *Client) ListConfirmations(ctx context.Context, account *model.Account) ([]model.ConfirmationItem, error) {
	query, err := c.confQuery(ctx, account, "list")
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/mobileconf/getlist?%s", c.communityURL, query.Encode())
	body, err := c.get(ctx, endpoint, account)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch confirmations: %w", err)
	}

	var list confirmationList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse confirmation list: %w", err)
	}
	if !list.Success {
		return nil, fmt.Errorf("confirmation list rejected: %s", list.Message)
	}

	items := make([]model.ConfirmationItem, len(list.Conf))
	for i, conf := range list.Conf {
		items[i] = model.ConfirmationItem{
			ID:          conf.ID,
			Nonce:       conf.Nonce,
			Type:        confirmationType(conf.Type),
			Headline:    conf.Headline,
			Creator:     conf.Creator,
			Summary:     conf.Summary,
			Icon:        conf.Icon,
			AcceptLabel: conf.Accept,
			CancelLabel: conf.Cancel,
		}
	}
	return items, nil
}

// Accept resolves a confirmation positively.
func (c *Client) Accept(ctx context.Context, account *model.Account, item model.ConfirmationItem) (bool, error) {
	return c.operate(ctx, account, item, "allow", "accept")
}

// Deny cancels a confirmation.
func (c *Client) Deny(ctx context.Context, account *model.Account, item model.ConfirmationItem) (bool, error) {
	return c.operate(ctx, account, item, "cancel", "reject")
}

func (c *Client) operate(ctx context.Context, account *model.Account, item model.ConfirmationItem, op, tag string) (bool, error) {
	query, err := c.confQuery(ctx, account, tag)
	if err != nil {
		return false, err
	}
	query.Set("op", op)
	query.Set("cid", item.ID)
	query.Set("ck", item.Nonce)

	endpoint := fmt.Sprintf("%s/mobileconf/ajaxop?%s", c.communityURL, query.Encode())
	body, err := c.get(ctx, endpoint, account)
	if err != nil {
		return false, fmt.Errorf("failed to %s confirmation %s: %w", op, item.ID, err)
	}

	var result operationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return false, fmt.Errorf("failed to parse %s response: %w", op, err)
	}
	return result.Success, nil
}

type refreshResponse struct {
	Response struct {
		AccessToken string `json:"access_token"`
	} `json:"response"`
}

// RefreshAccessToken exchanges the account's refresh token for a new
// access token and updates the session in place.
func (c *Client) RefreshAccessToken(ctx context.Context, account *model.Account) error {
	form := url.Values{}
	form.Set("refresh_token", account.Session.Token.RefreshToken)
	form.Set("steamid", account.SteamID)

	endpoint := fmt.Sprintf("%s/IAuthenticationService/GenerateAccessTokenForApp/v1/", c.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.URL.RawQuery = form.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to refresh access token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token refresh returned %d: %s", resp.StatusCode, string(body))
	}

	var refreshed refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if refreshed.Response.AccessToken == "" {
		return fmt.Errorf("token refresh returned no access token")
	}

	account.Session.Token.AccessToken = refreshed.Response.AccessToken
	account.Session.Token.Expiry = time.Time{}
	account.LastUpdated = time.Now()
	return nil
}

// confQuery builds the common time-keyed query shared by all mobileconf
// calls.
func (c *Client) confQuery(ctx context.Context, account *model.Account, tag string) (url.Values, error) {
	now := time.Now()
	key, err := c.keys.ConfirmationKey(ctx, account, now, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to generate confirmation key: %w", err)
	}

	query := url.Values{}
	query.Set("p", account.DeviceID)
	query.Set("a", account.SteamID)
	query.Set("k", key)
	query.Set("t", strconv.FormatInt(now.Unix(), 10))
	query.Set("m", "react")
	query.Set("tag", tag)
	return query, nil
}

func (c *Client) get(ctx context.Context, endpoint string, account *model.Account) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.AddCookie(&http.Cookie{
		Name:  "steamLoginSecure",
		Value: account.SteamID + "%7C%7C" + account.Session.Token.AccessToken,
	})
	if account.Session.SessionID != "" {
		req.AddCookie(&http.Cookie{Name: "sessionid", Value: account.Session.SessionID})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func confirmationType(wire int) model.ConfirmationType {
	switch wire {
	case wireTypeTrade:
		return model.ConfirmationTypeTrade
	case wireTypeMarketListing:
		return model.ConfirmationTypeMarketListing
	default:
		return model.ConfirmationTypeOther
	}
}
