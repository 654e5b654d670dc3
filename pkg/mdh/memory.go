package mdh

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/ArowuTest/ema-randomizer/internal/models"
)

const mockToken = "mock-access-token"

// MemoryDirectory is an in-process participant directory used in mock mode and tests
type MemoryDirectory struct {
	mu           sync.Mutex
	participants []models.Participant
	index        map[string]int
	patches      []models.ParticipantPatch
}

// NewMemoryDirectory creates a directory holding copies of the given participants
func NewMemoryDirectory(participants ...models.Participant) *MemoryDirectory {
	d := &MemoryDirectory{index: map[string]int{}}
	for _, p := range participants {
		d.index[p.ID] = len(d.participants)
		d.participants = append(d.participants, copyParticipant(p))
	}
	return d
}

// NewMockDirectory creates a directory with n generated participants
func NewMockDirectory(rng *rand.Rand, n int) *MemoryDirectory {
	return NewMemoryDirectory(GenerateMockParticipants(rng, n, models.DefaultFieldNames())...)
}

// GetAccessToken always succeeds
func (d *MemoryDirectory) GetAccessToken(ctx context.Context) (string, error) {
	return mockToken, nil
}

// ListParticipants returns copies of every participant in insertion order
func (d *MemoryDirectory) ListParticipants(ctx context.Context, token, projectID string) ([]models.Participant, error) {
	if token != mockToken {
		return nil, errors.New("mock directory: invalid token")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Participant, len(d.participants))
	for i, p := range d.participants {
		out[i] = copyParticipant(p)
	}
	return out, nil
}

// UpdateParticipant merges the patch fields into the stored participant
func (d *MemoryDirectory) UpdateParticipant(ctx context.Context, token, projectID string, patch models.ParticipantPatch) error {
	if token != mockToken {
		return errors.New("mock directory: invalid token")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[patch.ID]
	if !ok {
		return fmt.Errorf("mock directory: participant %s not found", patch.ID)
	}
	if d.participants[i].CustomFields == nil {
		d.participants[i].CustomFields = map[string]string{}
	}
	recorded := models.NewParticipantPatch(patch.ID)
	for k, v := range patch.CustomFields {
		d.participants[i].CustomFields[k] = v
		recorded.Set(k, v)
	}
	d.patches = append(d.patches, recorded)
	return nil
}

// Participant returns a copy of the stored participant
func (d *MemoryDirectory) Participant(id string) (models.Participant, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i, ok := d.index[id]
	if !ok {
		return models.Participant{}, false
	}
	return copyParticipant(d.participants[i]), true
}

// Patches returns every patch applied so far, in order
func (d *MemoryDirectory) Patches() []models.ParticipantPatch {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.ParticipantPatch(nil), d.patches...)
}

// GenerateMockParticipants creates participants with 1-3 categories, a bound of 3-8 and
// partially filled histories
func GenerateMockParticipants(rng *rand.Rand, n int, fields models.FieldNames) []models.Participant {
	participants := make([]models.Participant, 0, n)
	for i := 0; i < n; i++ {
		categories := rng.Intn(3) + 1
		bound := rng.Intn(6) + 3
		custom := map[string]string{
			fields.Categories: strconv.Itoa(categories),
			fields.Bound:      strconv.Itoa(bound),
		}
		for c := 1; c <= categories; c++ {
			issued := rng.Perm(bound)[:rng.Intn(bound+1)]
			entries := make([]string, len(issued))
			for j, v := range issued {
				entries[j] = strconv.Itoa(v + 1)
			}
			custom[fields.HistoryKey(c)] = strings.Join(entries, ",")
		}
		participants = append(participants, models.Participant{
			ID:                    fmt.Sprintf("mock-%04d", i+1),
			ParticipantIdentifier: fmt.Sprintf("MOCK%04d", i+1),
			CustomFields:          custom,
		})
	}
	return participants
}

func copyParticipant(p models.Participant) models.Participant {
	out := p
	if p.CustomFields != nil {
		out.CustomFields = make(map[string]string, len(p.CustomFields))
		for k, v := range p.CustomFields {
			out.CustomFields[k] = v
		}
	}
	return out
}
