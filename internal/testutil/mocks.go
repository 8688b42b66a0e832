package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/pratik-mahalle/sitevoice/internal/domain/billing"
	"github.com/pratik-mahalle/sitevoice/internal/domain/event"
	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
	"github.com/pratik-mahalle/sitevoice/internal/domain/voice"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*user.User
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*user.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.Users[u.ID]; ok {
		return user.ErrAlreadyExists
	}
	if u.Plan == "" {
		u.Plan = user.PlanFree
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	m.Users[u.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *MockUserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			out := *u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	existing, ok := m.Users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	existing.Email = u.Email
	existing.BusinessName = u.BusinessName
	existing.Trade = u.Trade
	existing.UpdatedAt = time.Now().UTC()
	u.UpdatedAt = existing.UpdatedAt
	return nil
}

func (m *MockUserRepository) SetPlan(ctx context.Context, id string, plan user.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	u, ok := m.Users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Plan = plan
	return nil
}

func (m *MockUserRepository) LinkStripeCustomer(ctx context.Context, id, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	for otherID, u := range m.Users {
		if otherID != id && u.StripeCustomerID != nil && *u.StripeCustomerID == customerID {
			return user.ErrCustomerTaken
		}
	}
	u, ok := m.Users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.StripeCustomerID = &customerID
	return nil
}

// MockEventRepository is a mock implementation of event.Repository
type MockEventRepository struct {
	mu         sync.Mutex
	Events     map[string]*event.ProcessedEvent
	ClaimError error
	Released   []string
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{
		Events: make(map[string]*event.ProcessedEvent),
	}
}

func (m *MockEventRepository) Claim(ctx context.Context, e *event.ProcessedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClaimError != nil {
		return m.ClaimError
	}
	if _, ok := m.Events[e.EventID]; ok {
		return event.ErrAlreadyProcessed
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now().UTC()
	}
	stored := *e
	m.Events[e.EventID] = &stored
	return nil
}

func (m *MockEventRepository) Release(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Events[eventID]; !ok {
		return event.ErrNotFound
	}
	delete(m.Events, eventID)
	m.Released = append(m.Released, eventID)
	return nil
}

func (m *MockEventRepository) Get(ctx context.Context, eventID string) (*event.ProcessedEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Events[eventID]
	if !ok {
		return nil, event.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (m *MockEventRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.Events {
		if e.ProcessedAt.Before(cutoff) {
			delete(m.Events, id)
			n++
		}
	}
	return n, nil
}

// MockBillingGateway is a mock implementation of billing.Gateway
type MockBillingGateway struct {
	mu              sync.Mutex
	NextCustomerID  string
	CheckoutURL     string
	PortalURL       string
	Err             error
	CustomersMade   int
	LastCheckout    billing.CheckoutParams
	LastPortalOwner string
}

func NewMockBillingGateway() *MockBillingGateway {
	return &MockBillingGateway{
		NextCustomerID: "cus_test",
		CheckoutURL:    "https://checkout.stripe.test/session",
		PortalURL:      "https://billing.stripe.test/portal",
	}
}

func (m *MockBillingGateway) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.CustomersMade++
	return m.NextCustomerID, nil
}

func (m *MockBillingGateway) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.LastCheckout = params
	return m.CheckoutURL, nil
}

func (m *MockBillingGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.LastPortalOwner = customerID
	return m.PortalURL, nil
}

// MockVoiceBackend is a mock implementation of voice.Backend
type MockVoiceBackend struct {
	mu            sync.Mutex
	Transcript    string
	Reply         string
	TranscribeErr error
	CompleteErr   error
	PingErr       error
	Prompts       []string
}

func (m *MockVoiceBackend) Name() string { return "mock" }

func (m *MockVoiceBackend) Transcribe(ctx context.Context, audio voice.Audio, locale string) (string, error) {
	if m.TranscribeErr != nil {
		return "", m.TranscribeErr
	}
	return m.Transcript, nil
}

func (m *MockVoiceBackend) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.CompleteErr != nil {
		return "", m.CompleteErr
	}
	return m.Reply, nil
}

func (m *MockVoiceBackend) Ping(ctx context.Context) error {
	return m.PingErr
}

// MockArchive is a mock implementation of voice.Archive
type MockArchive struct {
	mu   sync.Mutex
	Keys []string
	Err  error
}

func (m *MockArchive) Put(ctx context.Context, key string, audio voice.Audio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Keys = append(m.Keys, key)
	return nil
}
