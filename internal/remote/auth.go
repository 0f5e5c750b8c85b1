package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges a username (or email) and password for a bearer token.
// The form encoding matches OAuth2 password-grant endpoints.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	r := request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}

	var resp tokenResponse
	if err := c.do(ctx, r, &resp); err != nil {
		return "", err
	}

	if resp.AccessToken == "" {
		return "", errors.New("remote: login: response carried no access_token")
	}
	return resp.AccessToken, nil
}

// Me fetches the identity for token. The token is passed explicitly so a
// login can confirm it before anything is committed.
func (c *Client) Me(ctx context.Context, token string) (*commerce.Identity, error) {
	r := request{
		op:     "me",
		method: http.MethodGet,
		path:   "/auth/me",
		auth:   authExplicit,
		token:  token,
	}

	var identity commerce.Identity
	if err := c.do(ctx, r, &identity); err != nil {
		return nil, err
	}

	if identity.Username == "" && identity.ID.IsZero() {
		return nil, fmt.Errorf("remote: me: empty identity")
	}
	return &identity, nil
}

func (c *Client) Register(ctx context.Context, profile commerce.Profile) error {
	r, err := jsonRequest("register", http.MethodPost, "/auth/register", profile, authNone)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}
