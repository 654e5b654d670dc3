package mdh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/ema-randomizer/internal/models"
)

const (
	DefaultBaseURL  = "https://designer.mydatahelps.org"
	DefaultPageSize = 100
	tokenPath       = "/identityserver/connect/token"
)

// Config holds the settings for a MyDataHelps client
type Config struct {
	BaseURL        string
	TokenURL       string
	ServiceAccount string
	PrivateKey     string // PEM; literal "\n" sequences are accepted
	PageSize       int
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// Client is a MyDataHelps participant directory client
type Client struct {
	baseURL        string
	tokenURL       string
	serviceAccount string
	privateKey     string
	pageSize       int
	client         *http.Client
	now            func() time.Time
}

// participantsPage is one page of the participants endpoint
type participantsPage struct {
	Participants      []models.Participant `json:"participants"`
	TotalParticipants int                  `json:"totalParticipants"`
	NextPageID        string               `json:"nextPageID"`
}

// NewClient creates a new MyDataHelps client
func NewClient(cfg Config) (*Client, error) {
	if cfg.ServiceAccount == "" {
		return nil, errors.New("mdh service account required")
	}
	if cfg.PrivateKey == "" {
		return nil, errors.New("mdh private key required")
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = baseURL + tokenPath
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:        baseURL,
		tokenURL:       tokenURL,
		serviceAccount: cfg.ServiceAccount,
		privateKey:     cfg.PrivateKey,
		pageSize:       pageSize,
		client:         client,
		now:            time.Now,
	}, nil
}

// ListParticipants retrieves every participant of a project, following pagination
func (c *Client) ListParticipants(ctx context.Context, token, projectID string) ([]models.Participant, error) {
	var participants []models.Participant
	pageID := ""
	for {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(c.pageSize))
		if pageID != "" {
			query.Set("pageID", pageID)
		}
		endpoint := c.participantsURL(projectID) + "?" + query.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("mdh build participants request: %w", err)
		}
		c.authorize(req, token)

		var page participantsPage
		if err := c.do(req, &page); err != nil {
			return nil, fmt.Errorf("mdh list participants: %w", err)
		}
		participants = append(participants, page.Participants...)

		if page.NextPageID == "" || page.NextPageID == pageID || len(page.Participants) == 0 {
			break
		}
		pageID = page.NextPageID
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	return participants, nil
}

// UpdateParticipant sends a partial custom field update for one participant
func (c *Client) UpdateParticipant(ctx context.Context, token, projectID string, patch models.ParticipantPatch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("mdh marshal participant patch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.participantsURL(projectID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mdh build update request: %w", err)
	}
	c.authorize(req, token)
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("mdh update participant %s: %w", patch.ID, err)
	}
	return nil
}

func (c *Client) participantsURL(projectID string) string {
	return fmt.Sprintf("%s/api/v1/administration/projects/%s/participants", c.baseURL, url.PathEscape(projectID))
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
}

// do executes the request and decodes a JSON body into out when out is non-nil
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
