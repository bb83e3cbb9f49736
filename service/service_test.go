package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/repository"
)

// fixture 内存存储上的测试环境
type fixture struct {
	store  *repository.MemoryStore
	events *EventBus
	sink   *recordingSink
	leads  *LeadService
	clock  *fakeClock

	admin models.Identity
	tcA   models.Identity
	tcB   models.Identity
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.LeadEvent
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, event models.LeadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Types() []models.LeadEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]models.LeadEventType, 0, len(s.events))
	for _, event := range s.events {
		types = append(types, event.Type)
	}
	return types
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := repository.NewMemoryStore()
	store.SetClock(clock.Now)

	sink := &recordingSink{}
	events := NewEventBus(sink)

	f := &fixture{
		store:  store,
		events: events,
		sink:   sink,
		leads:  NewLeadService(store.Leads(), store.Users(), events).WithClock(clock.Now),
		clock:  clock,
	}
	f.admin = f.addUser(t, ctx, "Root", "root@example.com", models.UserRoleADMIN)
	f.tcA = f.addUser(t, ctx, "Tara", "tara@example.com", models.UserRoleTELECALLER)
	f.tcB = f.addUser(t, ctx, "Omar", "omar@example.com", models.UserRoleTELECALLER)
	return f
}

func (f *fixture) addUser(t *testing.T, ctx context.Context, name, email string, role models.UserRole) models.Identity {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "x", Role: role}
	require.NoError(t, f.store.Users().Create(ctx, user))
	return models.Identity{ID: user.ID.Hex(), Role: role, Name: name, Email: email}
}

func (f *fixture) createLead(t *testing.T, owner models.Identity, name string) *models.Lead {
	t.Helper()
	lead, err := f.leads.Create(context.Background(), owner, models.CreateLeadRequest{
		Name:    name,
		Email:   name + "@example.com",
		Phone:   "555-0100",
		Address: "1 Main St",
	})
	require.NoError(t, err)
	return lead
}
