package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/onlinemarketplace/marketplace-api/internal/core/domain"
	"github.com/onlinemarketplace/marketplace-api/internal/core/ports"
)

var nopLogger = zerolog.Nop()

func newTestCredentials() *CredentialManager {
	return NewCredentialManager(NewPasswordPolicy(), bcrypt.MinCost)
}

// ---- accounts ----

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[int64]*domain.Account
	nextID   int64
	findErr  error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username || existing.Email == a.Email {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	r.nextID++
	c := cloneAccount(a)
	c.ID = r.nextID
	r.accounts[c.ID] = c
	return cloneAccount(c), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) find(match func(*domain.Account) bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.accounts {
		if match(a) {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.Email == email })
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.find(func(a *domain.Account) bool { return a.Username == username })
}

func (r *stubAccountRepo) update(id int64, fn func(*domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	fn(a)
	return nil
}

func (r *stubAccountRepo) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	return r.update(id, func(a *domain.Account) { a.PasswordHash = hash })
}

func (r *stubAccountRepo) MarkEmailVerified(_ context.Context, id int64) error {
	return r.update(id, func(a *domain.Account) { a.EmailVerified = true })
}

func (r *stubAccountRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(a *domain.Account) { a.LastLogin = &at })
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, id int64, username, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	for _, other := range r.accounts {
		if other.ID != id && (other.Username == username || other.Email == email) {
			return nil, domain.ErrDuplicateIdentity
		}
	}
	a.Username, a.Email = username, email
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, id)
	return nil
}

// seed stores a verified-or-not account with the given password.
func (r *stubAccountRepo) seed(username, email, password string) *domain.Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	a, err := r.Create(context.Background(), &domain.Account{
		Username:              username,
		Email:                 email,
		PasswordHash:          string(hash),
		Active:                true,
		EmailVerificationHash: "abcdefghijklmno",
	})
	if err != nil {
		panic(err)
	}
	return a
}

type stubTokens struct{}

func (stubTokens) Issue(a *domain.Account) (ports.TokenPair, error) {
	return ports.TokenPair{
		AccessToken:  fmt.Sprintf("access-%d", a.ID),
		RefreshToken: fmt.Sprintf("refresh-%d", a.ID),
	}, nil
}

func parseStubToken(prefix, token string) (int64, error) {
	if !strings.HasPrefix(token, prefix) {
		return 0, errors.New("bad token")
	}
	return strconv.ParseInt(strings.TrimPrefix(token, prefix), 10, 64)
}

func (stubTokens) ParseAccess(token string) (int64, error) {
	return parseStubToken("access-", token)
}

func (stubTokens) ParseRefresh(token string) (int64, error) {
	return parseStubToken("refresh-", token)
}

type stubMailer struct {
	mu   sync.Mutex
	sent []int64
	err  error
}

func (m *stubMailer) SendVerification(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, a.ID)
	return nil
}

func (m *stubMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type stubThrottle struct {
	mu   sync.Mutex
	seen map[int64]bool
	err  error
}

func (t *stubThrottle) Allow(_ context.Context, id int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return false, t.err
	}
	if t.seen == nil {
		t.seen = make(map[int64]bool)
	}
	if t.seen[id] {
		return false, nil
	}
	t.seen[id] = true
	return true, nil
}

// ---- contacts and chats ----

type stubContactRepo struct {
	mu      sync.Mutex
	byID    map[int64]*domain.Contact
	byUser  map[int64]int64
	nextID  int64
	creates int
}

func newStubContactRepo() *stubContactRepo {
	return &stubContactRepo{byID: make(map[int64]*domain.Contact), byUser: make(map[int64]int64)}
}

func cloneContact(c *domain.Contact) *domain.Contact {
	out := *c
	out.Friends = append([]int64{}, c.Friends...)
	return &out
}

func (r *stubContactRepo) FindOrCreateByUserID(_ context.Context, userID int64) (*domain.Contact, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byUser[userID]; ok {
		return cloneContact(r.byID[id]), false, nil
	}
	r.nextID++
	c := &domain.Contact{ID: r.nextID + 100, UserID: userID, Friends: []int64{}}
	r.byID[c.ID] = c
	r.byUser[userID] = c.ID
	r.creates++
	return cloneContact(c), true, nil
}

func (r *stubContactRepo) FindByID(_ context.Context, id int64) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		return cloneContact(c), nil
	}
	return nil, domain.ErrContactNotFound
}

func (r *stubContactRepo) FindByIDs(_ context.Context, ids []int64) ([]*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Contact{}
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			out = append(out, cloneContact(c))
		}
	}
	return out, nil
}

func (r *stubContactRepo) AddFriend(_ context.Context, contactID, friendID int64) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[contactID]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	if !c.HasFriend(friendID) {
		c.Friends = append(c.Friends, friendID)
	}
	return cloneContact(c), nil
}

func (r *stubContactRepo) RemoveFriend(_ context.Context, contactID, friendID int64) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[contactID]
	if !ok {
		return nil, domain.ErrContactNotFound
	}
	kept := c.Friends[:0]
	for _, f := range c.Friends {
		if f != friendID {
			kept = append(kept, f)
		}
	}
	c.Friends = kept
	return cloneContact(c), nil
}

type stubChatRepo struct {
	mu     sync.Mutex
	chats  map[int64]*domain.Chat
	nextID int64
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{chats: make(map[int64]*domain.Chat)}
}

func cloneChat(c *domain.Chat) *domain.Chat {
	out := *c
	out.Participants = append([]int64{}, c.Participants...)
	out.Messages = append([]int64{}, c.Messages...)
	return &out
}

func (r *stubChatRepo) Create(_ context.Context, c *domain.Chat) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := cloneChat(c)
	stored.ID = r.nextID
	r.chats[stored.ID] = stored
	return cloneChat(stored), nil
}

func (r *stubChatRepo) FindByID(_ context.Context, id int64) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[id]; ok {
		return cloneChat(c), nil
	}
	return nil, domain.ErrChatNotFound
}

func (r *stubChatRepo) ListByParticipant(_ context.Context, contactID int64) ([]*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Chat{}
	for _, c := range r.chats {
		if c.HasParticipant(contactID) {
			out = append(out, cloneChat(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubChatRepo) UpdateParticipants(_ context.Context, id int64, participants []int64) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[id]
	if !ok {
		return nil, domain.ErrChatNotFound
	}
	c.Participants = append([]int64{}, participants...)
	return cloneChat(c), nil
}

func (r *stubChatRepo) AppendMessage(_ context.Context, chatID, messageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return domain.ErrChatNotFound
	}
	c.Messages = append(c.Messages, messageID)
	return nil
}

func (r *stubChatRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[id]; !ok {
		return domain.ErrChatNotFound
	}
	delete(r.chats, id)
	return nil
}

type stubMessageRepo struct {
	mu       sync.Mutex
	messages map[int64]*domain.Message
	nextID   int64
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{messages: make(map[int64]*domain.Message)}
}

func (r *stubMessageRepo) Create(_ context.Context, m *domain.Message) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *m
	stored.ID = r.nextID
	r.messages[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubMessageRepo) Latest(_ context.Context, ids []int64, limit int) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Message{}
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		if m, ok := r.messages[ids[i]]; ok {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// ---- favourites and listings ----

type favKey struct {
	kind   domain.FavouriteKind
	userID int64
	itemID int64
}

type stubFavouriteRepo struct {
	mu   sync.Mutex
	rows map[favKey]time.Time
}

func newStubFavouriteRepo() *stubFavouriteRepo {
	return &stubFavouriteRepo{rows: make(map[favKey]time.Time)}
}

func (r *stubFavouriteRepo) Add(_ context.Context, f *domain.Favourite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := favKey{f.Kind, f.UserID, f.ItemID}
	if _, ok := r.rows[k]; ok {
		return domain.ErrAlreadyFavourited
	}
	r.rows[k] = f.CreatedAt
	return nil
}

func (r *stubFavouriteRepo) Remove(_ context.Context, kind domain.FavouriteKind, userID, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := favKey{kind, userID, itemID}
	if _, ok := r.rows[k]; !ok {
		return domain.ErrFavouriteNotFound
	}
	delete(r.rows, k)
	return nil
}

func (r *stubFavouriteRepo) ItemIDs(_ context.Context, kind domain.FavouriteKind, userID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for k := range r.rows {
		if k.kind == kind && k.userID == userID {
			ids = append(ids, k.itemID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *stubFavouriteRepo) RemoveItem(_ context.Context, kind domain.FavouriteKind, itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.rows {
		if k.kind == kind && k.itemID == itemID {
			delete(r.rows, k)
		}
	}
	return nil
}

func (r *stubFavouriteRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type stubListingRepo struct {
	mu       sync.Mutex
	listings map[int64]*domain.Listing
	nextID   int64
	lastList ports.ListingFilter
}

func newStubListingRepo() *stubListingRepo {
	return &stubListingRepo{listings: make(map[int64]*domain.Listing)}
}

func (r *stubListingRepo) Create(_ context.Context, l *domain.Listing) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *l
	stored.ID = r.nextID
	r.listings[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubListingRepo) FindByID(_ context.Context, id int64) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.listings[id]; ok {
		out := *l
		return &out, nil
	}
	return nil, domain.ErrListingNotFound
}

func (r *stubListingRepo) FindByIDs(_ context.Context, ids []int64) ([]*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Listing{}
	for _, id := range ids {
		if l, ok := r.listings[id]; ok {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubListingRepo) List(_ context.Context, f ports.ListingFilter) ([]*domain.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastList = f
	out := []*domain.Listing{}
	for _, l := range r.listings {
		c := *l
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r *stubListingRepo) Update(_ context.Context, l *domain.Listing) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[l.ID]; !ok {
		return nil, domain.ErrListingNotFound
	}
	stored := *l
	r.listings[l.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubListingRepo) SetImageKey(_ context.Context, id int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return domain.ErrListingNotFound
	}
	l.ImageKey = key
	return nil
}

func (r *stubListingRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

type stubJobRepo struct {
	mu     sync.Mutex
	jobs   map[int64]*domain.JobListing
	nextID int64
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[int64]*domain.JobListing)}
}

func (r *stubJobRepo) Create(_ context.Context, j *domain.JobListing) (*domain.JobListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *j
	stored.ID = r.nextID
	r.jobs[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubJobRepo) FindByID(_ context.Context, id int64) (*domain.JobListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		out := *j
		return &out, nil
	}
	return nil, domain.ErrJobListingNotFound
}

func (r *stubJobRepo) FindByIDs(_ context.Context, ids []int64) ([]*domain.JobListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.JobListing{}
	for _, id := range ids {
		if j, ok := r.jobs[id]; ok {
			c := *j
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stubJobRepo) List(_ context.Context, _ ports.JobListingFilter) ([]*domain.JobListing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.JobListing{}
	for _, j := range r.jobs {
		c := *j
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r *stubJobRepo) Update(_ context.Context, j *domain.JobListing) (*domain.JobListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.ID]; !ok {
		return nil, domain.ErrJobListingNotFound
	}
	stored := *j
	r.jobs[j.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubJobRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return domain.ErrJobListingNotFound
	}
	delete(r.jobs, id)
	return nil
}

type stubGeoRepo struct {
	regions []domain.Region
	cities  []domain.City
}

func newStubGeoRepo() *stubGeoRepo {
	return &stubGeoRepo{
		regions: []domain.Region{{ID: 1, Name: "mazowieckie"}, {ID: 2, Name: "pomorskie"}, {ID: 3, Name: "opolskie"}},
		cities: []domain.City{
			{ID: 10, RegionID: 2, Name: "Gdańsk"},
			{ID: 11, RegionID: 1, Name: "Radom"},
			{ID: 12, RegionID: 1, Name: "Warszawa"},
		},
	}
}

func (r *stubGeoRepo) ListRegions(context.Context) ([]domain.Region, error) {
	return r.regions, nil
}

func (r *stubGeoRepo) FindRegionByName(_ context.Context, name string) (*domain.Region, error) {
	for _, reg := range r.regions {
		if reg.Name == name {
			out := reg
			return &out, nil
		}
	}
	return nil, domain.ErrRegionNotFound
}

func (r *stubGeoRepo) ListCities(_ context.Context, regionID *int64) ([]domain.City, error) {
	out := []domain.City{}
	for _, c := range r.cities {
		if regionID == nil || c.RegionID == *regionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubGeoRepo) CityExists(_ context.Context, id int64) (bool, error) {
	for _, c := range r.cities {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type stubCategoryRepo struct {
	categories []domain.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: []domain.Category{
		{ID: 1, Kind: domain.CategoryListing, Name: "Elektronika", Icon: "laptop"},
		{ID: 2, Kind: domain.CategoryListing, Name: "Motoryzacja", Icon: "car"},
		{ID: 1, Kind: domain.CategoryJobListing, Name: "IT", Icon: "code"},
	}}
}

func (r *stubCategoryRepo) List(_ context.Context, kind domain.CategoryKind) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range r.categories {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) Exists(_ context.Context, kind domain.CategoryKind, id int64) (bool, error) {
	for _, c := range r.categories {
		if c.Kind == kind && c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type stubImageStore struct{}

func (stubImageStore) PresignUpload(_ context.Context, key string) (string, error) {
	return "https://bucket.example.com/" + key + "?X-Amz-Signature=put", nil
}

func (stubImageStore) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://bucket.example.com/" + key + "?X-Amz-Signature=get", nil
}

func int64Ptr(v int64) *int64       { return &v }
func stringPtr(v string) *string    { return &v }
func float64Ptr(v float64) *float64 { return &v }
