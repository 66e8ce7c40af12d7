package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/embedding"
	"github.com/Harshitk-cp/ise/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// fakeBeliefStore implements domain.BeliefStore in memory.
type fakeBeliefStore struct {
	mu         sync.Mutex
	beliefs    map[int64]*domain.Belief
	embeddings map[int64][]float32
	nextID     int64
}

func newFakeBeliefStore() *fakeBeliefStore {
	return &fakeBeliefStore{
		beliefs:    make(map[int64]*domain.Belief),
		embeddings: make(map[int64][]float32),
	}
}

func (f *fakeBeliefStore) Create(_ context.Context, b *domain.Belief) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	b.ID = f.nextID
	cp := *b
	f.beliefs[b.ID] = &cp
	return nil
}

func (f *fakeBeliefStore) GetByID(_ context.Context, id int64) (*domain.Belief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beliefs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBeliefStore) ListIDs(_ context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.beliefs))
	for id := range f.beliefs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeBeliefStore) UpdateScores(_ context.Context, id int64, scores domain.BeliefScores, cycles int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beliefs[id]
	if !ok {
		return store.ErrNotFound
	}
	b.TruthScore = scores.TruthScore
	b.ConfidenceInterval = scores.ConfidenceInterval
	b.Volatility = scores.Volatility
	b.AdversarialCycles = cycles
	return nil
}

func (f *fakeBeliefStore) SetEmbedding(_ context.Context, id int64, emb []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.beliefs[id]; !ok {
		return store.ErrNotFound
	}
	f.embeddings[id] = emb
	return nil
}

func (f *fakeBeliefStore) SemanticSimilarity(_ context.Context, a, b int64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ea, okA := f.embeddings[a]
	eb, okB := f.embeddings[b]
	if !okA || !okB {
		return 0, store.ErrNotFound
	}
	return embedding.Cosine(ea, eb), nil
}

// fakeArgumentStore implements domain.ArgumentStore in memory and records
// how many ListByBelief calls overlap per belief.
type fakeArgumentStore struct {
	mu     sync.Mutex
	args   map[int64]*domain.Argument
	nextID int64

	listDelay   time.Duration
	inFlight    map[int64]int
	maxInFlight map[int64]int
}

func newFakeArgumentStore() *fakeArgumentStore {
	return &fakeArgumentStore{
		args:        make(map[int64]*domain.Argument),
		inFlight:    make(map[int64]int),
		maxInFlight: make(map[int64]int),
	}
}

func (f *fakeArgumentStore) Create(_ context.Context, a *domain.Argument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	cp := *a
	f.args[a.ID] = &cp
	return nil
}

func (f *fakeArgumentStore) GetByID(_ context.Context, id int64) (*domain.Argument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.args[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeArgumentStore) ListByBelief(_ context.Context, beliefID int64) ([]domain.Argument, error) {
	f.mu.Lock()
	f.inFlight[beliefID]++
	if f.inFlight[beliefID] > f.maxInFlight[beliefID] {
		f.maxInFlight[beliefID] = f.inFlight[beliefID]
	}
	var out []domain.Argument
	for _, a := range f.args {
		if a.BeliefID == beliefID {
			out = append(out, *a)
		}
	}
	delay := f.listDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	f.mu.Lock()
	f.inFlight[beliefID]--
	f.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeArgumentStore) UpdateDerived(_ context.Context, id int64, linkage, impact float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.args[id]
	if !ok {
		return store.ErrNotFound
	}
	a.LinkageScore = linkage
	a.ImpactScore = impact
	return nil
}

func (f *fakeArgumentStore) SetFallacies(_ context.Context, id int64, fs []domain.FallacyType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.args[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Fallacies = fs
	return nil
}

func (f *fakeArgumentStore) maxConcurrentLists(beliefID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight[beliefID]
}

type fakeLinkageStore struct {
	mu     sync.Mutex
	args   *fakeArgumentStore
	links  []domain.LinkageArgument
	nextID int64
}

func (f *fakeLinkageStore) Create(_ context.Context, l *domain.LinkageArgument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	f.links = append(f.links, *l)
	return nil
}

func (f *fakeLinkageStore) ListByArgument(_ context.Context, argumentID int64) ([]domain.LinkageArgument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LinkageArgument
	for _, l := range f.links {
		if l.ArgumentID == argumentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLinkageStore) ListByBelief(ctx context.Context, beliefID int64) ([]domain.LinkageArgument, error) {
	f.mu.Lock()
	links := append([]domain.LinkageArgument(nil), f.links...)
	f.mu.Unlock()

	var out []domain.LinkageArgument
	for _, l := range links {
		a, err := f.args.GetByID(ctx, l.ArgumentID)
		if err == nil && a.BeliefID == beliefID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeEvidenceStore struct {
	mu       sync.Mutex
	evidence []domain.Evidence
	nextID   int64
}

func (f *fakeEvidenceStore) Create(_ context.Context, e *domain.Evidence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	f.evidence = append(f.evidence, *e)
	return nil
}

func (f *fakeEvidenceStore) ListByBelief(_ context.Context, beliefID int64) ([]domain.Evidence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Evidence
	for _, e := range f.evidence {
		if e.BeliefID == beliefID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeHistoryStore struct {
	mu     sync.Mutex
	points []domain.ScorePoint
}

func (f *fakeHistoryStore) Append(_ context.Context, p domain.ScorePoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
	return nil
}

func (f *fakeHistoryStore) ListSince(_ context.Context, beliefID int64, since time.Time) ([]domain.ScorePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ScorePoint
	for _, p := range f.points {
		if p.BeliefID == beliefID && !p.RecordedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeHistoryStore) count(beliefID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.points {
		if p.BeliefID == beliefID {
			n++
		}
	}
	return n
}

// fakeLikelihoodStore implements domain.LikelihoodStore in memory.
type fakeLikelihoodStore struct {
	mu      sync.Mutex
	beliefs map[int64]*domain.LikelihoodBelief
	nextID  int64
}

func newFakeLikelihoodStore() *fakeLikelihoodStore {
	return &fakeLikelihoodStore{beliefs: make(map[int64]*domain.LikelihoodBelief)}
}

func (f *fakeLikelihoodStore) add(b domain.LikelihoodBelief) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beliefs[b.ID] = &b
}

func (f *fakeLikelihoodStore) CreateEstimate(_ context.Context, e *domain.LikelihoodEstimate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beliefs[e.LikelihoodBeliefID]
	if !ok {
		return store.ErrNotFound
	}
	f.nextID++
	e.ID = f.nextID
	b.Estimates = append(b.Estimates, *e)
	return nil
}

func (f *fakeLikelihoodStore) GetBelief(_ context.Context, id int64) (*domain.LikelihoodBelief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beliefs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	cp.Estimates = append([]domain.LikelihoodEstimate(nil), b.Estimates...)
	return &cp, nil
}

func (f *fakeLikelihoodStore) SetActive(_ context.Context, beliefID, activeID int64, likelihood float64, scores map[int64]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beliefs[beliefID]
	if !ok {
		return store.ErrNotFound
	}
	b.ActiveEstimateID = activeID
	b.ActiveLikelihood = likelihood
	for i := range b.Estimates {
		e := &b.Estimates[i]
		e.IsActive = e.ID == activeID
		e.Score = scores[e.ID]
	}
	return nil
}

// fakeCBAStore implements domain.CBAStore in memory.
type fakeCBAStore struct {
	mu     sync.Mutex
	cbas   map[int64]*domain.CBA
	nextID int64
}

func newFakeCBAStore() *fakeCBAStore {
	return &fakeCBAStore{cbas: make(map[int64]*domain.CBA)}
}

func (f *fakeCBAStore) add(c domain.CBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cbas[c.ID] = &c
}

func (f *fakeCBAStore) GetByID(_ context.Context, id int64) (*domain.CBA, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cbas[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	cp.Items = append([]domain.CBALineItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCBAStore) CreateItem(_ context.Context, item *domain.CBALineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cbas[item.CBAID]
	if !ok {
		return store.ErrNotFound
	}
	f.nextID++
	item.ID = f.nextID
	c.Items = append(c.Items, *item)
	return nil
}

func (f *fakeCBAStore) GetItemByLikelihoodBelief(_ context.Context, lbID int64) (*domain.CBALineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cbas {
		for _, it := range c.Items {
			if it.Likelihood.ID == lbID {
				cp := it
				return &cp, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCBAStore) UpdateItemExpectedValue(_ context.Context, itemID int64, ev decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cbas {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].ExpectedValue = ev
				return nil
			}
		}
	}
	return store.ErrNotFound
}

func (f *fakeCBAStore) UpdateTotals(_ context.Context, cbaID int64, benefits, costs, net decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cbas[cbaID]
	if !ok {
		return store.ErrNotFound
	}
	c.TotalExpectedBenefits = benefits
	c.TotalExpectedCosts = costs
	c.NetExpectedValue = net
	return nil
}

type shareKey struct {
	userID   int64
	beliefID int64
	outcome  domain.Outcome
}

// fakeMarketStore implements domain.MarketStore. WithTx runs fn against a
// copy of the state under one mutex and commits it only when fn succeeds.
type fakeMarketStore struct {
	mu       sync.Mutex
	pools    map[int64]domain.LiquidityPool
	balances map[int64]domain.UserBalance
	shares   map[shareKey]domain.Share
	trades   []domain.Trade
}

func newFakeMarketStore() *fakeMarketStore {
	return &fakeMarketStore{
		pools:    make(map[int64]domain.LiquidityPool),
		balances: make(map[int64]domain.UserBalance),
		shares:   make(map[shareKey]domain.Share),
	}
}

func (f *fakeMarketStore) CreatePool(_ context.Context, p *domain.LiquidityPool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.pools[p.BeliefID]; ok {
		return store.ErrConflict
	}
	f.pools[p.BeliefID] = *p
	return nil
}

func (f *fakeMarketStore) GetPool(_ context.Context, beliefID int64) (*domain.LiquidityPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pools[beliefID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeMarketStore) ListActivePools(_ context.Context) ([]domain.LiquidityPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LiquidityPool
	for _, p := range f.pools {
		if p.Status == domain.PoolActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BeliefID < out[j].BeliefID })
	return out, nil
}

func (f *fakeMarketStore) ListExpirable(_ context.Context, now time.Time) ([]domain.LiquidityPool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LiquidityPool
	for _, p := range f.pools {
		if p.Status == domain.PoolActive && p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BeliefID < out[j].BeliefID })
	return out, nil
}

func (f *fakeMarketStore) GetBalance(_ context.Context, userID int64) (*domain.UserBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (f *fakeMarketStore) ListShares(_ context.Context, userID int64) ([]domain.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Share
	for k, s := range f.shares {
		if k.userID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BeliefID != out[j].BeliefID {
			return out[i].BeliefID < out[j].BeliefID
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out, nil
}

func (f *fakeMarketStore) WithTx(ctx context.Context, fn func(tx domain.MarketTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := &fakeMarketTx{
		pools:    make(map[int64]domain.LiquidityPool, len(f.pools)),
		balances: make(map[int64]domain.UserBalance, len(f.balances)),
		shares:   make(map[shareKey]domain.Share, len(f.shares)),
	}
	for k, v := range f.pools {
		tx.pools[k] = v
	}
	for k, v := range f.balances {
		tx.balances[k] = v
	}
	for k, v := range f.shares {
		tx.shares[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}
	f.pools, f.balances, f.shares = tx.pools, tx.balances, tx.shares
	f.trades = append(f.trades, tx.trades...)
	return nil
}

type fakeMarketTx struct {
	pools    map[int64]domain.LiquidityPool
	balances map[int64]domain.UserBalance
	shares   map[shareKey]domain.Share
	trades   []domain.Trade
}

func (t *fakeMarketTx) LockPool(_ context.Context, beliefID int64) (*domain.LiquidityPool, error) {
	p, ok := t.pools[beliefID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (t *fakeMarketTx) LockBalance(_ context.Context, userID int64) (*domain.UserBalance, error) {
	b, ok := t.balances[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &b, nil
}

func (t *fakeMarketTx) GetShare(_ context.Context, userID, beliefID int64, outcome domain.Outcome) (*domain.Share, error) {
	s, ok := t.shares[shareKey{userID, beliefID, outcome}]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (t *fakeMarketTx) ListSharesByBelief(_ context.Context, beliefID int64) ([]domain.Share, error) {
	var out []domain.Share
	for k, s := range t.shares {
		if k.beliefID == beliefID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (t *fakeMarketTx) SavePool(_ context.Context, p domain.LiquidityPool) error {
	t.pools[p.BeliefID] = p
	return nil
}

func (t *fakeMarketTx) SaveBalance(_ context.Context, b domain.UserBalance) error {
	t.balances[b.UserID] = b
	return nil
}

func (t *fakeMarketTx) SaveShare(_ context.Context, s domain.Share) error {
	t.shares[shareKey{s.UserID, s.BeliefID, s.Outcome}] = s
	return nil
}

func (t *fakeMarketTx) DeleteShare(_ context.Context, userID, beliefID int64, outcome domain.Outcome) error {
	delete(t.shares, shareKey{userID, beliefID, outcome})
	return nil
}

func (t *fakeMarketTx) InsertTrade(_ context.Context, tr domain.Trade) error {
	t.trades = append(t.trades, tr)
	return nil
}

// MockFallacyDetector mocks domain.FallacyDetector.
type MockFallacyDetector struct {
	mock.Mock
}

func (m *MockFallacyDetector) DetectFallacies(ctx context.Context, statement, parent string) ([]domain.FallacyType, error) {
	args := m.Called(ctx, statement, parent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FallacyType), args.Error(1)
}

// MockEmbeddingClient mocks domain.EmbeddingClient.
type MockEmbeddingClient struct {
	mock.Mock
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}
