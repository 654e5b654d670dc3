package mdh

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
	assertionLifetime   = 5 * time.Minute
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// GetAccessToken exchanges a signed service-account assertion for an API access token
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	assertion, err := c.signAssertion()
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "api")
	form.Set("client_assertion_type", clientAssertionType)
	form.Set("client_assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("mdh build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var tokens tokenResponse
	if err := c.do(req, &tokens); err != nil {
		return "", fmt.Errorf("mdh token request: %w", err)
	}
	if tokens.AccessToken == "" {
		return "", errors.New("mdh token response has no access token")
	}
	return tokens.AccessToken, nil
}

// signAssertion builds the RS256 client assertion for the service account
func (c *Client) signAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(UnescapePrivateKey(c.privateKey)))
	if err != nil {
		return "", fmt.Errorf("mdh parse private key: %w", err)
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.serviceAccount,
		Subject:   c.serviceAccount,
		Audience:  jwt.ClaimStrings{c.tokenURL},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionLifetime)),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("mdh sign assertion: %w", err)
	}
	return signed, nil
}

// UnescapePrivateKey restores newlines in keys stored as single lines with literal "\n"
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
