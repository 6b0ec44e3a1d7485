package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/query-service/internal/domain"
	"github.com/helpdesk-kit/query-service/internal/events"
	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

// fakeUserRepo is an in-memory stand-in for the Postgres credential
// store, keyed by normalized username like the real unique index.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Username]; exists {
		return apperrors.NewDuplicateUsername(user.Username)
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.Username] = &copied
	return nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsernameAndRole(_ context.Context, username string, role domain.Role) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok || user.Role != role {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, username, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return pgx.ErrNoRows
	}
	user.HashedPassword = hashedPassword
	return nil
}

// fakeSessionRepo keeps the login ledger in a slice ordered by insert.
type fakeSessionRepo struct {
	mu      sync.Mutex
	nextID  int64
	records []domain.SessionRecord
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{}
}

func (f *fakeSessionRepo) Open(_ context.Context, username string, loginAt time.Time) (*domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	record := domain.SessionRecord{ID: f.nextID, Username: username, LoginTime: loginAt}
	f.records = append(f.records, record)
	return &record, nil
}

func (f *fakeSessionRepo) CloseLatestOpen(_ context.Context, username string, logoutAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := -1
	for i := range f.records {
		record := &f.records[i]
		if record.Username != username || record.LogoutTime != nil {
			continue
		}
		if latest < 0 || record.LoginTime.After(f.records[latest].LoginTime) {
			latest = i
		}
	}
	if latest < 0 {
		return false, nil
	}
	f.records[latest].LogoutTime = &logoutAt
	return true, nil
}

func (f *fakeSessionRepo) ListAll(_ context.Context) ([]domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SessionRecord(nil), f.records...), nil
}

func (f *fakeSessionRepo) ListBetween(_ context.Context, from, to time.Time) ([]domain.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.SessionRecord
	for _, record := range f.records {
		if !record.LoginTime.Before(from) && record.LoginTime.Before(to) {
			result = append(result, record)
		}
	}
	return result, nil
}

// fakeTicketRepo mirrors the replace-the-whole-set assignment semantics
// of the Postgres implementation, with exact-membership lookups.
type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ticket.ID = f.nextID
	if ticket.DateRaised.IsZero() {
		ticket.DateRaised = time.Now()
	}
	copied := *ticket
	f.tickets[ticket.ID] = &copied
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	copied.Assignees = append([]string(nil), ticket.Assignees...)
	return &copied, nil
}

func (f *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		result = append(result, *ticket)
	}
	return result, nil
}

func (f *fakeTicketRepo) UpdateDetails(_ context.Context, id int64, email, mobile, heading, description string, status domain.TicketStatus, closedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.ClientEmail = email
	ticket.ClientMob = mobile
	ticket.Heading = heading
	ticket.Description = description
	ticket.Status = status
	ticket.DateClosed = closedAt
	return nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus, closedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.DateClosed = closedAt
	return nil
}

func (f *fakeTicketRepo) UpdateComment(_ context.Context, id int64, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Comment = &note
	return nil
}

func (f *fakeTicketRepo) Assign(_ context.Context, id int64, assignees []string, priority domain.TicketPriority, slaHours int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Assignees = append([]string(nil), assignees...)
	ticket.Priority = &priority
	ticket.SLAHours = &slaHours
	return nil
}

func (f *fakeTicketRepo) ListAssignedOpen(_ context.Context, username string) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.Status != domain.TicketStatusOpen {
			continue
		}
		if ticket.IsAssignedTo(username) {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

// fakeRevoker records revoked token IDs with their TTLs.
type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[tokenID] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[tokenID]
	return ok, nil
}

// captureDispatcher records published events in order.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (c *captureDispatcher) published() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event(nil), c.events...)
}
