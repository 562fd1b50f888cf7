package service

import (
	"context"
	"testing"

	"github.com/shipping-engine/internal/cache"
	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/config"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func useMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.Use(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { _ = cache.Close() })
	return mr
}

func TestShippingSnapshotBuildMapsRelations(t *testing.T) {
	f := setupServiceTest(t)
	catalog := seedShippingCatalog(t, f)
	open := f.createCategory(t, "Open")
	f.createFreeRule(t, "1000", true, catalog.general.ID)

	snap, err := f.snapshots().Build()
	if err != nil {
		t.Fatalf("build snapshot failed: %v", err)
	}
	if len(snap.Methods) != 4 {
		t.Fatalf("snapshot should include inactive methods, got %d", len(snap.Methods))
	}
	express, ok := snap.MethodByID(catalog.express.ID)
	if !ok || len(express.Tiers) != 2 || express.MaxWeight == nil {
		t.Fatalf("express method not mapped: %+v", express)
	}

	electronics, ok := snap.CategoryByID(catalog.electronics.ID)
	if !ok {
		t.Fatalf("electronics category missing")
	}
	if electronics.Restriction.IsWildcard() || electronics.Restriction.Allows(catalog.economy.ID) {
		t.Fatalf("electronics should exclude economy: %v", electronics.Restriction.MethodIDs())
	}
	openCategory, ok := snap.CategoryByID(open.ID)
	if !ok || !openCategory.Restriction.IsWildcard() {
		t.Fatalf("category without methods should be unrestricted")
	}

	if len(snap.FreeRules) != 1 || len(snap.FreeRules[0].CategoryIDs) != 1 || snap.FreeRules[0].CategoryIDs[0] != catalog.general.ID {
		t.Fatalf("free rule categories not mapped: %+v", snap.FreeRules)
	}
}

func TestShippingSnapshotCurrentWithoutCache(t *testing.T) {
	f := setupServiceTest(t)
	seedShippingCatalog(t, f)
	svc := f.snapshots()

	snap, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("current snapshot failed: %v", err)
	}
	if len(snap.Methods) != 4 {
		t.Fatalf("expected 4 methods, got %d", len(snap.Methods))
	}
	if err := svc.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate without cache should be a no-op: %v", err)
	}
}

func TestShippingSnapshotCacheLifecycle(t *testing.T) {
	mr := useMiniRedis(t)
	f := setupServiceTest(t)
	seedShippingCatalog(t, f)
	svc := f.snapshots()
	ctx := context.Background()
	key := cache.BuildKey(constants.CacheKeyShippingSnapshot)

	if _, err := svc.Current(ctx); err != nil {
		t.Fatalf("current snapshot failed: %v", err)
	}
	if !mr.Exists(key) {
		t.Fatalf("snapshot should be cached under %s", key)
	}
	if ttl := mr.TTL(key); ttl.Seconds() != 60 {
		t.Fatalf("snapshot ttl want 60s got %s", ttl)
	}

	f.createMethod(t, models.ShippingMethod{Name: "Same Day", Price: money("200"), IsActive: true})
	snap, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current snapshot failed: %v", err)
	}
	if len(snap.Methods) != 4 {
		t.Fatalf("cached snapshot should not see new method, got %d", len(snap.Methods))
	}

	snap, err = svc.Refresh(ctx, "test")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(snap.Methods) != 5 {
		t.Fatalf("refreshed snapshot want 5 methods, got %d", len(snap.Methods))
	}
	snap, err = svc.Current(ctx)
	if err != nil || len(snap.Methods) != 5 {
		t.Fatalf("cache should hold refreshed snapshot: %v", err)
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("snapshot should be removed from cache")
	}
}

// writeDuringBuildRepo 在第一次读取配送方式之后执行一次后台写入
type writeDuringBuildRepo struct {
	repository.ShippingRepository
	onList func()
}

func (r *writeDuringBuildRepo) ListAllMethods() ([]models.ShippingMethod, error) {
	methods, err := r.ShippingRepository.ListAllMethods()
	if r.onList != nil {
		hook := r.onList
		r.onList = nil
		hook()
	}
	return methods, err
}

func newRacingSnapshots(t *testing.T, f *serviceFixture) *ShippingSnapshotService {
	t.Helper()
	repo := &writeDuringBuildRepo{ShippingRepository: f.shippingRepo}
	snapshots := NewShippingSnapshotService(repo, config.PricingConfig{SnapshotCacheTTLSeconds: 60}, nil)
	admin := NewShippingAdminService(f.shippingRepo, snapshots, nil)
	repo.onList = func() {
		if _, err := admin.CreateMethod(context.Background(), ShippingMethodInput{Name: "Same Day", Price: decimal.NewFromInt(200)}); err != nil {
			t.Errorf("admin write failed: %v", err)
		}
	}
	return snapshots
}

func TestShippingSnapshotRefreshDiscardsBuildOverlappingAdminWrite(t *testing.T) {
	useMiniRedis(t)
	f := setupServiceTest(t)
	seedShippingCatalog(t, f)
	svc := newRacingSnapshots(t, f)
	ctx := context.Background()

	snap, err := svc.Refresh(ctx, constants.SnapshotReasonAdminWrite)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if len(snap.Methods) != 5 {
		t.Fatalf("refresh should rebuild after the write, got %d methods", len(snap.Methods))
	}
	cached, hit, err := cache.GetShippingSnapshot(ctx)
	if err != nil || !hit {
		t.Fatalf("snapshot should be cached: hit=%v err=%v", hit, err)
	}
	if len(cached.Methods) != 5 {
		t.Fatalf("cached snapshot want 5 methods got %d", len(cached.Methods))
	}
}

func TestShippingSnapshotCurrentSkipsCachingStaleBuild(t *testing.T) {
	mr := useMiniRedis(t)
	f := setupServiceTest(t)
	seedShippingCatalog(t, f)
	svc := newRacingSnapshots(t, f)
	ctx := context.Background()

	snap, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current snapshot failed: %v", err)
	}
	if len(snap.Methods) != 4 {
		t.Fatalf("in-flight build should see 4 methods, got %d", len(snap.Methods))
	}
	if mr.Exists(cache.BuildKey(constants.CacheKeyShippingSnapshot)) {
		t.Fatalf("stale build must not be cached")
	}

	snap, err = svc.Current(ctx)
	if err != nil {
		t.Fatalf("current snapshot failed: %v", err)
	}
	if len(snap.Methods) != 5 {
		t.Fatalf("next read should see the new method, got %d", len(snap.Methods))
	}
}

func TestShippingAdminWriteInvalidatesCachedSnapshot(t *testing.T) {
	mr := useMiniRedis(t)
	f := setupServiceTest(t)
	seedShippingCatalog(t, f)
	snapshots := f.snapshots()
	ctx := context.Background()
	key := cache.BuildKey(constants.CacheKeyShippingSnapshot)

	if _, err := snapshots.Current(ctx); err != nil {
		t.Fatalf("current snapshot failed: %v", err)
	}
	if !mr.Exists(key) {
		t.Fatalf("snapshot should be cached")
	}
	admin := NewShippingAdminService(f.shippingRepo, snapshots, nil)
	if _, err := admin.CreateMethod(ctx, ShippingMethodInput{Name: "Same Day", Price: decimal.NewFromInt(200)}); err != nil {
		t.Fatalf("create method failed: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("admin write should drop the cached snapshot")
	}
	version, err := cache.ShippingSnapshotVersion(ctx)
	if err != nil || version != 1 {
		t.Fatalf("snapshot version want 1 got %d (%v)", version, err)
	}
}
