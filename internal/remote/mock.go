package remote

import (
	"context"
	"sync"

	"SwipeSentinel/internal/model"
)

// MockClient returns controllable fixed data for development and testing.
type MockClient struct {
	mu sync.Mutex

	Signals    map[string]model.RemoteSignals // keyed by account ID
	SignalsErr map[string]error
	BioErr     error
	Matches    int

	BioUpdates map[string]string // account ID -> last username pushed
	Swiped     map[string]int    // account ID -> swipe call count
}

func NewMockClient() *MockClient {
	return &MockClient{
		Signals:    make(map[string]model.RemoteSignals),
		SignalsErr: make(map[string]error),
		BioUpdates: make(map[string]string),
		Swiped:     make(map[string]int),
	}
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) FetchSignals(_ context.Context, acc model.Account) (model.RemoteSignals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.SignalsErr[acc.ID]; ok {
		return model.RemoteSignals{}, err
	}
	if sig, ok := m.Signals[acc.ID]; ok {
		return sig, nil
	}
	return model.RemoteSignals{Alive: true}, nil
}

func (m *MockClient) UpdateBio(_ context.Context, acc model.Account, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BioErr != nil {
		return m.BioErr
	}
	m.BioUpdates[acc.ID] = username
	return nil
}

func (m *MockClient) SwipeLikedMe(_ context.Context, acc model.Account) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Swiped[acc.ID]++
	return m.Matches, nil
}
