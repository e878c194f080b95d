package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Randomizando3/DramaBoxV2/internal/identity"
	"github.com/Randomizando3/DramaBoxV2/internal/models"
	"github.com/Randomizando3/DramaBoxV2/internal/rtdb"

	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string]string{}}
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[objectPath] = contentType + ":" + string(data)
	return "https://cdn.test/" + objectPath, nil
}

func (u *fakeUploader) Delete(_ context.Context, objectPath string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, objectPath)
	return nil
}

var errStoreDown = errors.New("store unavailable")

// faultyStore wraps the in-memory tree with a read delay and writes that
// fail under chosen path prefixes
type faultyStore struct {
	*rtdb.MemoryStore

	mu       sync.Mutex
	getDelay time.Duration
	failing  []string
}

func (f *faultyStore) failWrites(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = append(f.failing, prefix)
}

func (f *faultyStore) heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = nil
}

func (f *faultyStore) slowReads(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getDelay = d
}

func (f *faultyStore) check(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, prefix := range f.failing {
		if strings.HasPrefix(path, prefix) {
			return errStoreDown
		}
	}
	return nil
}

func (f *faultyStore) Get(ctx context.Context, path string, v interface{}) error {
	f.mu.Lock()
	delay := f.getDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return f.MemoryStore.Get(ctx, path, v)
}

func (f *faultyStore) Set(ctx context.Context, path string, v interface{}) error {
	if err := f.check(path); err != nil {
		return err
	}
	return f.MemoryStore.Set(ctx, path, v)
}

func (f *faultyStore) Update(ctx context.Context, path string, values map[string]interface{}) error {
	for k := range values {
		if err := f.check(rtdb.Join(path, k)); err != nil {
			return err
		}
	}
	return f.MemoryStore.Update(ctx, path, values)
}

func (f *faultyStore) Transaction(ctx context.Context, path string, fn rtdb.UpdateFn) error {
	if err := f.check(path); err != nil {
		return err
	}
	return f.MemoryStore.Transaction(ctx, path, fn)
}

type sentEvent struct {
	UserID string
	Event  string
	Data   map[string]interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) NotifyUser(userID, event string, data map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Event: event, Data: data})
}

func (n *recordingNotifier) count(userID, event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.UserID == userID && e.Event == event {
			c++
		}
	}
	return c
}

type fakeAuth struct {
	signUp    func(email, password string) (*identity.AuthResult, error)
	signIn    func(email, password string) (*identity.AuthResult, error)
	resetSent []string
}

func (a *fakeAuth) SignUp(_ context.Context, email, password string) (*identity.AuthResult, error) {
	return a.signUp(email, password)
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) (*identity.AuthResult, error) {
	return a.signIn(email, password)
}

func (a *fakeAuth) SendPasswordReset(_ context.Context, email string) error {
	a.resetSent = append(a.resetSent, email)
	return nil
}

type testEnv struct {
	ctx        context.Context
	store      *rtdb.MemoryStore
	faults     *faultyStore
	notifier   *recordingNotifier
	uploader   *fakeUploader
	auth       *fakeAuth
	now        time.Time
	wallet     *WalletService
	profiles   *ProfileService
	catalog    *CatalogService
	community  *CommunityService
	library    *LibraryService
	rewards    *RewardsService
	affiliates *AffiliateService
	accounts   *AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ctx:      context.Background(),
		store:    rtdb.NewMemoryStore(),
		notifier: &recordingNotifier{},
		uploader: newFakeUploader(),
		auth:     &fakeAuth{},
		now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	env.faults = &faultyStore{MemoryStore: env.store}
	clock := func() time.Time { return env.now }
	store := env.faults

	env.wallet = NewWalletService(store, nil, env.notifier)
	env.wallet.now = clock
	env.profiles = NewProfileService(store, env.uploader)
	env.profiles.now = clock
	env.catalog = NewCatalogService(store, env.profiles)
	env.catalog.now = clock
	env.community = NewCommunityService(store, env.profiles, env.uploader, env.notifier)
	env.community.now = clock
	env.community.shuffle = func(int, func(i, j int)) {}
	env.library = NewLibraryService(store, env.catalog, env.community)
	env.library.now = clock
	env.rewards = NewRewardsService(store, env.wallet, env.profiles, env.notifier, time.UTC)
	env.rewards.now = clock
	env.affiliates = NewAffiliateService(store, env.wallet, env.notifier, "https://dramabox.example/pagina.php")
	env.affiliates.now = clock
	env.accounts = NewAccountService(env.auth, store, env.profiles, env.affiliates)
	env.accounts.now = clock

	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func (e *testEnv) addProfile(t *testing.T, userID, name, plan string, until int64) {
	t.Helper()
	require.NoError(t, e.profiles.UpsertProfile(e.ctx, userID, &models.UserProfile{
		Email:            userID + "@example.com",
		Name:             name,
		Plan:             plan,
		PremiumUntilUnix: until,
	}))
}

func (e *testEnv) coins(t *testing.T, userID string) int64 {
	t.Helper()
	coins, err := e.wallet.GetCoins(e.ctx, userID)
	require.NoError(t, err)
	return coins
}
