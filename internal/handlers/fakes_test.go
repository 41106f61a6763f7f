package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/store"
)

// fakeUserStore is an in-memory UserStore for handler tests.
type fakeUserStore struct {
	users   map[uuid.UUID]models.User
	getByID int // lookup counter, for asserting short-circuits
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[uuid.UUID]models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) List(_ context.Context, filter store.UserFilter) ([]models.User, int, error) {
	var all []models.User
	for _, u := range f.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
			continue
		}
		all = append(all, u)
	}
	total := len(all)

	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (models.User, error) {
	f.getByID++
	u, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u *models.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.IsActive = active
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) Stats(_ context.Context) (store.UserStats, error) {
	stats := store.UserStats{ByRole: make(map[string]int)}
	for _, u := range f.users {
		stats.Total++
		if u.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByRole[string(u.Role)]++
	}
	return stats, nil
}

// fakeVehicleStore is an in-memory VehicleStore for handler tests.
type fakeVehicleStore struct {
	vehicles map[uuid.UUID]models.Vehicle
}

func newFakeVehicleStore(vehicles ...models.Vehicle) *fakeVehicleStore {
	f := &fakeVehicleStore{vehicles: make(map[uuid.UUID]models.Vehicle)}
	for _, v := range vehicles {
		f.vehicles[v.ID] = v
	}
	return f
}

func (f *fakeVehicleStore) matches(v models.Vehicle, filter store.VehicleFilter) bool {
	if filter.Status != "" && v.Status != filter.Status {
		return false
	}
	if filter.Priority != "" && v.Priority != filter.Priority {
		return false
	}
	if filter.AssignedTo != nil {
		if v.AssignedTo == nil || *v.AssignedTo != *filter.AssignedTo {
			return false
		}
	}
	if filter.Search != "" && !strings.Contains(strings.ToLower(v.RegistrationNumber), strings.ToLower(filter.Search)) {
		return false
	}
	return true
}

func (f *fakeVehicleStore) List(ctx context.Context, filter store.VehicleFilter) ([]models.Vehicle, int, error) {
	all, err := f.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)

	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if total > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeVehicleStore) ListAll(_ context.Context, filter store.VehicleFilter) ([]models.Vehicle, error) {
	var all []models.Vehicle
	for _, v := range f.vehicles {
		if f.matches(v, filter) {
			all = append(all, v)
		}
	}
	return all, nil
}

func (f *fakeVehicleStore) GetByID(_ context.Context, id uuid.UUID) (models.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return models.Vehicle{}, store.ErrNotFound
	}
	return v, nil
}

func (f *fakeVehicleStore) Create(_ context.Context, v *models.Vehicle) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Status == "" {
		v.Status = models.VehicleStatusPending
	}
	if v.Priority == "" {
		v.Priority = models.VehiclePriorityMedium
	}
	v.CreatedAt = time.Now()
	f.vehicles[v.ID] = *v
	return nil
}

func (f *fakeVehicleStore) Update(_ context.Context, v *models.Vehicle) error {
	if _, ok := f.vehicles[v.ID]; !ok {
		return store.ErrNotFound
	}
	f.vehicles[v.ID] = *v
	return nil
}

func (f *fakeVehicleStore) Assign(_ context.Context, id, userID uuid.UUID) error {
	v, ok := f.vehicles[id]
	if !ok {
		return store.ErrNotFound
	}
	v.AssignedTo = &userID
	v.Status = models.VehicleStatusAssigned
	f.vehicles[id] = v
	return nil
}

func (f *fakeVehicleStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.VehicleStatus) error {
	v, ok := f.vehicles[id]
	if !ok {
		return store.ErrNotFound
	}
	v.Status = status
	f.vehicles[id] = v
	return nil
}

func (f *fakeVehicleStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.vehicles[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.vehicles, id)
	return nil
}

func (f *fakeVehicleStore) Stats(_ context.Context) (models.VehicleStats, error) {
	var stats models.VehicleStats
	for _, v := range f.vehicles {
		stats.Total++
		switch v.Status {
		case models.VehicleStatusPending:
			stats.Pending++
		case models.VehicleStatusAssigned:
			stats.Assigned++
		case models.VehicleStatusInProgress:
			stats.InProgress++
		case models.VehicleStatusRecovered:
			stats.Recovered++
		case models.VehicleStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

// fakeBackOfficeStore enforces the active cap the way the SQL store does.
type fakeBackOfficeStore struct {
	numbers map[uuid.UUID]models.BackOfficeNumber
}

func newFakeBackOfficeStore(numbers ...models.BackOfficeNumber) *fakeBackOfficeStore {
	f := &fakeBackOfficeStore{numbers: make(map[uuid.UUID]models.BackOfficeNumber)}
	for _, n := range numbers {
		f.numbers[n.ID] = n
	}
	return f
}

func (f *fakeBackOfficeStore) List(_ context.Context) ([]models.BackOfficeNumber, error) {
	var all []models.BackOfficeNumber
	for _, n := range f.numbers {
		all = append(all, n)
	}
	return all, nil
}

func (f *fakeBackOfficeStore) ListActive(_ context.Context) ([]models.BackOfficeNumber, error) {
	var all []models.BackOfficeNumber
	for _, n := range f.numbers {
		if n.IsActive {
			all = append(all, n)
		}
	}
	return all, nil
}

func (f *fakeBackOfficeStore) CountActive(_ context.Context) (int, error) {
	count := 0
	for _, n := range f.numbers {
		if n.IsActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeBackOfficeStore) Create(ctx context.Context, n *models.BackOfficeNumber) error {
	if n.IsActive {
		active, _ := f.CountActive(ctx)
		if active >= models.MaxActiveBackOfficeNumbers {
			return store.ErrConflict
		}
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	f.numbers[n.ID] = *n
	return nil
}

func (f *fakeBackOfficeStore) Update(_ context.Context, n *models.BackOfficeNumber) error {
	existing, ok := f.numbers[n.ID]
	if !ok {
		return store.ErrNotFound
	}
	n.IsActive = existing.IsActive
	f.numbers[n.ID] = *n
	return nil
}

func (f *fakeBackOfficeStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	n, ok := f.numbers[id]
	if !ok {
		return store.ErrNotFound
	}
	if active && !n.IsActive {
		count, _ := f.CountActive(ctx)
		if count >= models.MaxActiveBackOfficeNumbers {
			return store.ErrConflict
		}
	}
	n.IsActive = active
	f.numbers[id] = n
	return nil
}

func (f *fakeBackOfficeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.numbers[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.numbers, id)
	return nil
}
