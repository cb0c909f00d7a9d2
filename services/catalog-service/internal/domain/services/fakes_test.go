package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
)

type fakeProductRepo struct {
	mu        sync.Mutex
	nextID    int64
	products  map[int64]*models.Product
	createErr error
	attachErr error
	getCalls  int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*models.Product)}
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) AttachExport(_ context.Context, id int64, refs models.ExportRefs) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attachErr != nil {
		return r.attachErr
	}
	p, ok := r.products[id]
	if !ok {
		return errors.New("no such product")
	}
	p.CSVKey = optional(refs.CSVKey)
	p.ExcelKey = optional(refs.ExcelKey)
	return nil
}

func (r *fakeProductRepo) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) ListProducts(_ context.Context, f models.ProductFilter) ([]*models.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Product
	for _, p := range r.products {
		if !p.IsActive && !f.IncludeInactive {
			continue
		}
		if f.Label != "" && p.Label != f.Label {
			continue
		}
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if f.Offset >= total {
		return []*models.Product{}, total, nil
	}
	end := total
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], total, nil
}

func (r *fakeProductRepo) DeactivateProduct(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || !p.IsActive {
		return false, nil
	}
	p.IsActive = false
	return true, nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[int64]*models.User
	profiles map[int64]*models.Profile
	nextID   int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User), profiles: make(map[int64]*models.Profile)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return utils.ErrEmailTaken
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.IsActive = true
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) CreateProfile(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = p.UserID
	cp := *p
	r.profiles[p.UserID] = &cp
	return nil
}

func (r *fakeUserRepo) GetProfileByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID int64, u models.ProfileUpdate) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.PictureKey != nil {
		k := *u.PictureKey
		p.PictureKey = &k
	}
	cp := *p
	return &cp, nil
}

// fakeTx выполняет fn без транзакции
type fakeTx struct {
	calls int
}

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type published struct {
	topic string
	key   string
	value []byte
}

type fakeMessaging struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (f *fakeMessaging) Publish(_ context.Context, topic, key string, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{topic: topic, key: key, value: msg})
	return nil
}

func (f *fakeMessaging) Subscribe(context.Context, string, interfaces.MessageHandler) (func() error, error) {
	return func() error { return nil }, nil
}

func (f *fakeMessaging) Close() error { return nil }

func (f *fakeMessaging) events() []*interfaces.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*interfaces.Message, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, &interfaces.Message{Topic: m.topic, Key: m.key, Value: m.value})
	}
	return out
}
