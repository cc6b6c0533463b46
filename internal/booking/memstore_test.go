package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/repository"
)

// memState is one committed version of the in-memory database.
type memState struct {
	users        map[uint64]model.User
	courts       map[uint64]model.Court
	reservations map[uint64]model.Reservation
	nextID       uint64
}

func (s *memState) clone() *memState {
	c := &memState{
		users:        make(map[uint64]model.User, len(s.users)),
		courts:       make(map[uint64]model.Court, len(s.courts)),
		reservations: make(map[uint64]model.Reservation, len(s.reservations)),
		nextID:       s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.courts {
		c.courts[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	return c
}

// memStore is a repository.Store that serialises transactions with a
// mutex and discards a transaction's writes when fn fails.
type memStore struct {
	mu        sync.Mutex
	state     *memState
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		users:        map[uint64]model.User{},
		courts:       map[uint64]model.Court{},
		reservations: map[uint64]model.Reservation{},
		nextID:       1,
	}}
}

func (m *memStore) addUser(id uint64) {
	m.state.users[id] = model.User{ID: id, Email: "u@example.com", Role: model.RoleUser}
}

func (m *memStore) addCourt(id uint64, status string) {
	m.state.courts[id] = model.Court{ID: id, Name: "court", Category: model.CategoryTennis, Capacity: 4, Status: status}
}

func (m *memStore) addReservation(r model.Reservation) uint64 {
	r.ID = m.state.nextID
	m.state.nextID++
	m.state.reservations[r.ID] = r
	return r.ID
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.reservations)
}

func (m *memStore) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{st: work, insertErr: m.insertErr}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *memStore) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{st: m.state}).GetUser(ctx, id)
}

func (m *memStore) GetCourt(ctx context.Context, id uint64) (*model.Court, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{st: m.state}).LockCourt(ctx, id)
}

func (m *memStore) ListCourts(ctx context.Context, f repository.CourtFilter) ([]model.Court, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Court{}
	for _, c := range m.state.courts {
		if (f.Category == "" || c.Category == f.Category) && (f.Status == "" || c.Status == f.Status) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ListTimeSlots(ctx context.Context, courtID uint64) ([]model.TimeSlot, error) {
	return []model.TimeSlot{}, nil
}

func (m *memStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.state.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) ListReservations(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Reservation{}
	for _, r := range m.state.reservations {
		if f.UserID != 0 && r.UserID != f.UserID {
			continue
		}
		if f.CourtID != 0 && r.CourtID != f.CourtID {
			continue
		}
		if f.Date != "" && r.Date != f.Date {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, nil
}

type memTx struct {
	st        *memState
	insertErr error
}

func (t *memTx) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (t *memTx) LockCourt(ctx context.Context, id uint64) (*model.Court, error) {
	c, ok := t.st.courts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (t *memTx) SetCourtStatus(ctx context.Context, id uint64, status string) error {
	c := t.st.courts[id]
	c.Status = status
	t.st.courts[id] = c
	return nil
}

func (t *memTx) LockReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := t.st.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (t *memTx) ActiveReservations(ctx context.Context, courtID uint64, date string) ([]model.Reservation, error) {
	out := []model.Reservation{}
	for _, r := range t.st.reservations {
		if r.CourtID == courtID && r.Date == date && r.Active() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (t *memTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	if t.insertErr != nil {
		return t.insertErr
	}
	r.ID = t.st.nextID
	t.st.nextID++
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	t.st.reservations[r.ID] = *r
	return nil
}

func (t *memTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	if _, ok := t.st.reservations[r.ID]; !ok {
		return repository.ErrNotFound
	}
	r.UpdatedAt = time.Now().UTC()
	t.st.reservations[r.ID] = *r
	return nil
}

func (t *memTx) DeleteReservation(ctx context.Context, id uint64) error {
	if _, ok := t.st.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.st.reservations, id)
	return nil
}
