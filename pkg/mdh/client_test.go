package mdh

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArowuTest/ema-randomizer/internal/models"
)

const testServiceAccount = "RKSProject.svc"

func testKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return key, string(pem.EncodeToMemory(block))
}

// fakeMDH serves the token, list and update endpoints
type fakeMDH struct {
	t       *testing.T
	pub     *rsa.PublicKey
	pages   map[string]participantsPage
	updates []models.ParticipantPatch
}

func (f *fakeMDH) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/identityserver/connect/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(f.t, clientAssertionType, r.PostForm.Get("client_assertion_type"))

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(r.PostForm.Get("client_assertion"), claims, func(token *jwt.Token) (interface{}, error) {
			return f.pub, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		if err != nil {
			http.Error(w, "invalid_client", http.StatusBadRequest)
			return
		}
		assert.Equal(f.t, testServiceAccount, claims.Issuer)
		assert.Equal(f.t, testServiceAccount, claims.Subject)
		assert.NotEmpty(f.t, claims.ID)
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "access-123", TokenType: "Bearer", ExpiresIn: 3600})
	})
	mux.HandleFunc("/api/v1/administration/projects/proj-1/participants", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			assert.Equal(f.t, "2", r.URL.Query().Get("pageSize"))
			page, ok := f.pages[r.URL.Query().Get("pageID")]
			if !ok {
				http.Error(w, "unknown page", http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(page)
		case http.MethodPut:
			var patch models.ParticipantPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if patch.ID == "missing" {
				http.Error(w, "participant not found", http.StatusNotFound)
				return
			}
			f.updates = append(f.updates, patch)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func newTestClient(t *testing.T, privateKey string) (*Client, *fakeMDH) {
	t.Helper()
	key, pemKey := testKey(t)
	if privateKey == "" {
		privateKey = pemKey
	}
	fake := &fakeMDH{
		t:   t,
		pub: &key.PublicKey,
		pages: map[string]participantsPage{
			"": {
				Participants: []models.Participant{
					{ID: "p1", CustomFields: map[string]string{"ema_categories": "1"}},
					{ID: "p2", CustomFields: map[string]string{"ema_categories": "2"}},
				},
				TotalParticipants: 3,
				NextPageID:        "page-2",
			},
			"page-2": {
				Participants:      []models.Participant{{ID: "p3"}},
				TotalParticipants: 3,
			},
		},
	}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL:        srv.URL,
		ServiceAccount: testServiceAccount,
		PrivateKey:     privateKey,
		PageSize:       2,
		HTTPClient:     srv.Client(),
	})
	require.NoError(t, err)
	return client, fake
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{PrivateKey: "k"})
	assert.Error(t, err)
	_, err = NewClient(Config{ServiceAccount: "sa"})
	assert.Error(t, err)
}

func TestClient_GetAccessToken(t *testing.T) {
	client, _ := newTestClient(t, "")
	token, err := client.GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-123", token)
}

func TestClient_GetAccessToken_EscapedKey(t *testing.T) {
	_, pemKey := testKey(t)
	escaped := strings.ReplaceAll(pemKey, "\n", `\n`)
	client, _ := newTestClient(t, escaped)

	assertion, err := client.signAssertion()
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(assertion, "."))
}

func TestClient_GetAccessToken_BadKey(t *testing.T) {
	client, _ := newTestClient(t, "not a key")
	token, err := client.GetAccessToken(context.Background())
	assert.Error(t, err)
	assert.Empty(t, token)
}

func TestClient_ListParticipants_FollowsPages(t *testing.T) {
	client, _ := newTestClient(t, "")
	participants, err := client.ListParticipants(context.Background(), "access-123", "proj-1")
	require.NoError(t, err)
	require.Len(t, participants, 3)
	assert.Equal(t, "p1", participants[0].ID)
	assert.Equal(t, "p3", participants[2].ID)

	value, ok := participants[1].Field("ema_categories")
	assert.True(t, ok)
	assert.Equal(t, "2", value)
}

func TestClient_ListParticipants_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, "")
	_, err := client.ListParticipants(context.Background(), "wrong", "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_UpdateParticipant(t *testing.T) {
	client, fake := newTestClient(t, "")
	patch := models.NewParticipantPatch("p2")
	patch.Set("ema_metadata1", "1,3,2")
	patch.Set("ema_random1", "2")

	require.NoError(t, client.UpdateParticipant(context.Background(), "access-123", "proj-1", patch))
	require.Len(t, fake.updates, 1)
	assert.Equal(t, "p2", fake.updates[0].ID)
	assert.Equal(t, map[string]string{"ema_metadata1": "1,3,2", "ema_random1": "2"}, fake.updates[0].CustomFields)

	err := client.UpdateParticipant(context.Background(), "access-123", "proj-1", models.NewParticipantPatch("missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
