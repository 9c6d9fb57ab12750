package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/invcore/internal/config"
	"github.com/gravitas-games/invcore/pkg/inventory"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if _, err := b.Get(ctx, "player"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := b.Put(ctx, "player", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	if err := b.Put(ctx, "player", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("unexpected overwrite error: %v", err)
	}
	if err := b.Put(ctx, "chest", []byte(`{}`)); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	data, err := b.Get(ctx, "player")
	if err != nil || string(data) != `{"a":2}` {
		t.Fatalf("expected overwritten value, got %q err=%v", data, err)
	}
	keys, err := b.Keys(ctx)
	if err != nil || len(keys) != 2 || keys[0] != "chest" || keys[1] != "player" {
		t.Fatalf("expected sorted keys [chest player], got %v err=%v", keys, err)
	}
	if err := b.Delete(ctx, "chest"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if _, err := b.Get(ctx, "chest"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedisBackend(context.Background(), config.RedisConfig{Address: mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("unexpected connect error: %v", err)
	}
	defer b.Close()
	exerciseBackend(t, b)

	if !mr.Exists("test:player") {
		t.Fatalf("expected prefixed key in redis")
	}
}

func TestRedisBackendConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisBackend(context.Background(), config.RedisConfig{Address: addr}); err == nil {
		t.Fatalf("expected connection error")
	}
}

func TestSQLiteBackend(t *testing.T) {
	b, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	defer b.Close()
	exerciseBackend(t, b)
}

func TestSQLiteBackendPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inv.db")
	b, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	if err := b.Put(context.Background(), "player", []byte("x")); err != nil {
		t.Fatalf("unexpected put error: %v", err)
	}
	b.Close()

	again, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("unexpected reopen error: %v", err)
	}
	defer again.Close()
	if data, err := again.Get(context.Background(), "player"); err != nil || string(data) != "x" {
		t.Fatalf("expected value to survive reopen, got %q err=%v", data, err)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	if _, ok := b.(*MemoryBackend); !ok {
		t.Fatalf("expected memory backend, got %T", b)
	}

	mr := miniredis.RunT(t)
	b, err = Open(ctx, config.StorageConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{Address: mr.Addr()}}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected open error: %v", err)
	}
	if _, ok := b.(*RedisBackend); !ok {
		t.Fatalf("expected redis backend, got %T", b)
	}
	b.Close()

	if _, err := Open(ctx, config.StorageConfig{Backend: "etcd"}, quietLogger()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := inventory.SampleRegistry()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewRepository(NewRedisBackendFromClient(client, "inv:"), quietLogger())
	defer repo.Backend().Close()

	chest := inventory.NewCollection(reg, "chest", inventory.WithReorder(true))
	chest.AddNew(inventory.SampleWood, 4)
	sword, _ := inventory.NewInstance(reg, inventory.SampleSword, 1)
	sword.SetProperty(inventory.PropDurability, inventory.IntValue(40))
	chest.Insert(sword, 2, inventory.FailTransfer)
	player := inventory.NewCollection(reg, "player")
	player.AddNew(inventory.SampleNail, 7)

	if err := repo.SaveAll(ctx, []*inventory.Collection{chest, player}); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	chestOut := inventory.NewCollection(reg, "chest", inventory.WithReorder(true))
	playerOut := inventory.NewCollection(reg, "player")
	empty := inventory.NewCollection(reg, "bench")
	n, err := repo.LoadAll(ctx, []*inventory.Collection{chestOut, playerOut, empty})
	if err != nil || n != 2 {
		t.Fatalf("expected 2 collections restored, got %d err=%v", n, err)
	}
	if chestOut.Len() != 3 || chestOut.SlotAt(1) != nil {
		t.Fatalf("expected chest layout restored, got len=%d", chestOut.Len())
	}
	v, _ := chestOut.SlotAt(2).Property(inventory.PropDurability)
	if v != inventory.IntValue(40) {
		t.Fatalf("expected durability 40, got %+v", v)
	}
	if playerOut.Count(inventory.SampleNail, true) != 7 || empty.Len() != 0 {
		t.Fatalf("unexpected restored contents")
	}
}

func TestRepositoryLoadRespectsCurrentSettings(t *testing.T) {
	ctx := context.Background()
	reg := inventory.SampleRegistry()
	repo := NewRepository(NewMemoryBackend(), quietLogger())

	chest := inventory.NewCollection(reg, "chest")
	chest.AddNew(inventory.SampleWood, 3)
	chest.AddNew(inventory.SampleRope, 2)
	if err := repo.Save(ctx, chest); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// the chest has since been limited to tools
	tools := inventory.NewCollection(reg, "chest", inventory.WithCategories(inventory.CategoryTool))
	if err := repo.Load(ctx, tools); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if tools.Len() != 1 || tools.Contains(inventory.SampleWood) || tools.Count(inventory.SampleRope, true) != 2 {
		t.Fatalf("expected only the rope restored, got len=%d", tools.Len())
	}
}
