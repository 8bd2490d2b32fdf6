package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinye/prm/backend/internal/contracts"
	"github.com/zinye/prm/backend/pkg/config"
	"github.com/zinye/prm/backend/pkg/logger"
)

// fakePartnerRepo is an in-memory PartnerRepository
type fakePartnerRepo struct {
	partners map[string]*contracts.Partner

	updatedID     string
	updatedFields *contracts.ScoreFields
	updateErr     error
}

func (f *fakePartnerRepo) GetByID(ctx context.Context, id string) (*contracts.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, contracts.ErrPartnerNotFound
	}
	return p, nil
}

func (f *fakePartnerRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.partners))
	for id := range f.partners {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakePartnerRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (f *fakePartnerRepo) UpdateScoreFields(ctx context.Context, id string, fields contracts.ScoreFields) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedID = id
	f.updatedFields = &fields
	return nil
}

// fakeActivityRepo serves canned activity and records the requested window
type fakeActivityRepo struct {
	deals []contracts.DealRecord
	leads []contracts.LeadRecord

	dealsErr error
	leadsErr error

	calls    int
	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeActivityRepo) GetDeals(ctx context.Context, partnerID string, from, to time.Time) ([]contracts.DealRecord, error) {
	f.calls++
	f.lastFrom, f.lastTo = from, to
	if f.dealsErr != nil {
		return nil, f.dealsErr
	}
	return f.deals, nil
}

func (f *fakeActivityRepo) GetLeads(ctx context.Context, partnerID string, from, to time.Time) ([]contracts.LeadRecord, error) {
	f.calls++
	if f.leadsErr != nil {
		return nil, f.leadsErr
	}
	return f.leads, nil
}

// fakeSnapshotCache is an in-memory SnapshotCache storing JSON values
type fakeSnapshotCache struct {
	entries map[string][]byte

	sets     int
	hits     int
	patterns []string
}

func newFakeSnapshotCache() *fakeSnapshotCache {
	return &fakeSnapshotCache{entries: map[string][]byte{}}
}

func (f *fakeSnapshotCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	f.hits++
	return true, nil
}

func (f *fakeSnapshotCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	f.sets++
	return nil
}

func (f *fakeSnapshotCache) DeleteByPattern(ctx context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func newTestEngine(partnerRepo *fakePartnerRepo, activityRepo *fakeActivityRepo, now time.Time) *Engine {
	log := testLogger()
	engine := NewEngine(
		NewCollector(partnerRepo, activityRepo, log),
		NewTrendAggregator(),
		testCalculator(),
		partnerRepo,
		nil, // no cache
		time.Minute,
		log,
	)
	return engine.WithClock(func() time.Time { return now })
}

func activePartner() *contracts.Partner {
	return &contracts.Partner{
		ID:                    "PRT-001",
		Name:                  "Acme Solutions",
		Status:                contracts.StatusActive,
		TrainingCompleted:     true,
		CertificationObtained: true,
		AgreementEndDate:      timePtr(day(2026, 1, 1)),
	}
}

func TestEngine_GetPartnerPerformance(t *testing.T) {
	now := day(2024, 6, 1)

	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{
		deals: []contracts.DealRecord{
			wonDeal(day(2024, 1, 15), 1000),
			wonDeal(day(2024, 2, 10), 500),
		},
		leads: []contracts.LeadRecord{
			lead(day(2024, 2, 5), true),
			lead(day(2024, 2, 20), false),
		},
	}

	engine := newTestEngine(partnerRepo, activityRepo, now)

	snapshot, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)

	require.Len(t, snapshot.MonthlyTrends, 2)
	assert.Equal(t, "2024-01", snapshot.MonthlyTrends[0].Month)
	assert.Equal(t, "2024-02", snapshot.MonthlyTrends[1].Month)

	assert.Equal(t, 2, snapshot.Totals.DealsCount)
	assert.Equal(t, 1500.0, snapshot.Totals.Revenue)
	assert.Equal(t, 50.0, snapshot.Totals.ConversionRate)

	// Read path must not write back
	assert.Nil(t, partnerRepo.updatedFields)
}

func TestEngine_GetPartnerPerformance_DefaultWindow(t *testing.T) {
	now := day(2024, 6, 1)

	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{}

	engine := newTestEngine(partnerRepo, activityRepo, now)

	_, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)

	assert.Equal(t, day(2023, 6, 1), activityRepo.lastFrom)
	assert.Equal(t, now, activityRepo.lastTo)
}

func TestEngine_GetPartnerPerformance_NotFound(t *testing.T) {
	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{}}
	activityRepo := &fakeActivityRepo{}

	engine := newTestEngine(partnerRepo, activityRepo, day(2024, 6, 1))

	_, err := engine.GetPartnerPerformance(context.Background(), "PRT-404", nil)
	assert.ErrorIs(t, err, contracts.ErrPartnerNotFound)
	assert.Zero(t, activityRepo.calls)
}

func TestEngine_GetPartnerPerformance_InvalidPeriod(t *testing.T) {
	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{}

	engine := newTestEngine(partnerRepo, activityRepo, day(2024, 6, 1))

	inverted := &contracts.PeriodRange{From: day(2024, 6, 1), To: day(2024, 1, 1)}
	_, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", inverted)

	assert.ErrorIs(t, err, contracts.ErrInvalidPeriod)
	// Rejected before any fetch
	assert.Zero(t, activityRepo.calls)
}

func TestEngine_GetPartnerPerformance_ActivityUnavailable(t *testing.T) {
	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{dealsErr: errors.New("connection refused")}

	engine := newTestEngine(partnerRepo, activityRepo, day(2024, 6, 1))

	_, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	assert.ErrorIs(t, err, contracts.ErrActivityUnavailable)
}

func TestEngine_GetPartnerPerformance_NoActivity(t *testing.T) {
	now := day(2024, 6, 1)

	// A reachable store with zero records is a valid result, not an error
	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{}

	engine := newTestEngine(partnerRepo, activityRepo, now)

	snapshot, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)

	assert.NotNil(t, snapshot.MonthlyTrends)
	assert.Empty(t, snapshot.MonthlyTrends)
	assert.Zero(t, snapshot.Totals.DealsCount)
	assert.Zero(t, snapshot.Totals.Revenue)
	assert.Zero(t, snapshot.Totals.ConversionRate)
	assert.Zero(t, snapshot.Score.RevenueScore)
	assert.Zero(t, snapshot.Score.ConversionScore)

	// Training and compliance credit survive without activity
	assert.Equal(t, 100.0, snapshot.Score.TrainingScore)
	assert.Equal(t, 100.0, snapshot.Score.ComplianceScore)
}

func TestEngine_RecalculatePartnerScore(t *testing.T) {
	now := day(2024, 6, 1)

	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{
		deals: []contracts.DealRecord{wonDeal(day(2024, 1, 15), 500_000)},
		leads: []contracts.LeadRecord{
			lead(day(2024, 2, 5), true),
			lead(day(2024, 2, 20), false),
		},
	}

	engine := newTestEngine(partnerRepo, activityRepo, now)

	score, err := engine.RecalculatePartnerScore(context.Background(), "PRT-001")
	require.NoError(t, err)

	// revenue 50 * 0.4 + conversion 50 * 0.3 + training 100 * 0.2 + compliance 100 * 0.1
	assert.InDelta(t, 65.0, score, 0.0001)

	require.NotNil(t, partnerRepo.updatedFields)
	assert.Equal(t, "PRT-001", partnerRepo.updatedID)
	assert.Equal(t, 500_000.0, partnerRepo.updatedFields.TotalRevenueGenerated)
	assert.Equal(t, 1, partnerRepo.updatedFields.TotalDealsClosed)
	assert.Equal(t, 50.0, partnerRepo.updatedFields.LeadConversionRate)
	assert.InDelta(t, 65.0, partnerRepo.updatedFields.PartnerScore, 0.0001)
}

func TestEngine_RecalculatePartnerScore_NoWriteOnFailure(t *testing.T) {
	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{leadsErr: errors.New("timeout")}

	engine := newTestEngine(partnerRepo, activityRepo, day(2024, 6, 1))

	_, err := engine.RecalculatePartnerScore(context.Background(), "PRT-001")
	assert.ErrorIs(t, err, contracts.ErrActivityUnavailable)

	// Nothing persisted when the pipeline fails
	assert.Nil(t, partnerRepo.updatedFields)
}

func newCachedTestEngine(partnerRepo *fakePartnerRepo, activityRepo *fakeActivityRepo, cache SnapshotCache, now time.Time) *Engine {
	log := testLogger()
	engine := NewEngine(
		NewCollector(partnerRepo, activityRepo, log),
		NewTrendAggregator(),
		testCalculator(),
		partnerRepo,
		cache,
		time.Minute,
		log,
	)
	return engine.WithClock(func() time.Time { return now })
}

func TestEngine_GetPartnerPerformance_CachedRead(t *testing.T) {
	now := day(2024, 6, 1)

	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{
		deals: []contracts.DealRecord{wonDeal(day(2024, 1, 15), 1000)},
	}
	cache := newFakeSnapshotCache()

	engine := newCachedTestEngine(partnerRepo, activityRepo, cache, now)

	first, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	fetchesAfterFirst := activityRepo.calls

	// The second read for the same window is served from cache
	second, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, fetchesAfterFirst, activityRepo.calls)
}

func TestEngine_GetPartnerPerformance_CacheKeyedByWindow(t *testing.T) {
	now := day(2024, 6, 1)

	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{}
	cache := newFakeSnapshotCache()

	engine := newCachedTestEngine(partnerRepo, activityRepo, cache, now)

	_, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)

	// A different explicit window is a different key, not a hit
	period := &contracts.PeriodRange{From: day(2024, 1, 1), To: day(2024, 3, 31)}
	_, err = engine.GetPartnerPerformance(context.Background(), "PRT-001", period)
	require.NoError(t, err)

	assert.Zero(t, cache.hits)
	assert.Equal(t, 2, cache.sets)
}

func TestEngine_RecalculatePartnerScore_InvalidatesCache(t *testing.T) {
	now := day(2024, 6, 1)

	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{
		"PRT-001": activePartner(),
	}}
	activityRepo := &fakeActivityRepo{
		deals: []contracts.DealRecord{wonDeal(day(2024, 1, 15), 1000)},
	}
	cache := newFakeSnapshotCache()

	engine := newCachedTestEngine(partnerRepo, activityRepo, cache, now)

	// Populate the cache, then change the underlying activity
	stale, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)
	activityRepo.deals = append(activityRepo.deals, wonDeal(day(2024, 2, 10), 500))

	_, err = engine.RecalculatePartnerScore(context.Background(), "PRT-001")
	require.NoError(t, err)

	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "partner:performance:PRT-001:*", cache.patterns[0])

	// Every cached window for the partner was dropped; the next read
	// recomputes and sees the new deal
	fresh, err := engine.GetPartnerPerformance(context.Background(), "PRT-001", nil)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)
	assert.NotEqual(t, stale.Totals, fresh.Totals)
	assert.Equal(t, 2, fresh.Totals.DealsCount)
	assert.Equal(t, 1500.0, fresh.Totals.Revenue)
}

func TestEngine_RecalculatePartnerScore_NotFound(t *testing.T) {
	partnerRepo := &fakePartnerRepo{partners: map[string]*contracts.Partner{}}
	activityRepo := &fakeActivityRepo{}

	engine := newTestEngine(partnerRepo, activityRepo, day(2024, 6, 1))

	_, err := engine.RecalculatePartnerScore(context.Background(), "PRT-404")
	assert.ErrorIs(t, err, contracts.ErrPartnerNotFound)
}
