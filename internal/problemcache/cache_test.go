package problemcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kinderpath/internal/config"
	"github.com/abhisek/kinderpath/internal/store"
)

type memRepo struct {
	mu     sync.Mutex
	byKey  map[store.ProblemKey][]store.Problem
	gets   int
	getErr error
	n      int
}

func newMemRepo() *memRepo { return &memRepo{byKey: make(map[store.ProblemKey][]store.Problem)} }

func (r *memRepo) Put(_ context.Context, p *store.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		r.n++
		p.ID = fmt.Sprintf("gen-%d", r.n)
	}
	r.byKey[p.Key()] = append(r.byKey[p.Key()], *p)
	return nil
}

func (r *memRepo) Get(_ context.Context, key store.ProblemKey) ([]store.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.getErr != nil {
		return nil, r.getErr
	}
	return append([]store.Problem(nil), r.byKey[key]...), nil
}

func (r *memRepo) ByID(_ context.Context, id string) (store.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ps := range r.byKey {
		for _, p := range ps {
			if p.ID == id {
				return p, nil
			}
		}
	}
	return store.Problem{}, store.ErrNotFound
}

var key = store.ProblemKey{Subject: "math", SkillID: "add-within-5", SubskillID: "add-numerals-5"}

func problem(id string) store.Problem {
	return store.Problem{ID: id, Subject: key.Subject, SkillID: key.SkillID, SubskillID: key.SubskillID,
		Difficulty: 3, Payload: json.RawMessage(`{"question":"` + id + `"}`)}
}

func TestGet_ReadsStore(t *testing.T) {
	repo := newMemRepo()
	c := New(repo)
	require.NoError(t, c.Put(context.Background(), []store.Problem{problem("a"), problem("b")}))

	got, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
}

func TestGetOrFill_FillsOnce(t *testing.T) {
	repo := newMemRepo()
	c := New(repo)

	var calls atomic.Int32
	release := make(chan struct{})
	fill := func(context.Context) ([]store.Problem, error) {
		calls.Add(1)
		<-release
		return []store.Problem{problem(""), problem("")}, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]store.Problem, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFill(context.Background(), key, fill)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	// Latecomers that missed the shared flight find the filled store.
	assert.Equal(t, int32(1), calls.Load())
	for i := range callers {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 2)
	}
	stored, _ := repo.Get(context.Background(), key)
	assert.Len(t, stored, 2)
	assert.NotEmpty(t, stored[0].ID)
}

func TestGetOrFill_Warm(t *testing.T) {
	repo := newMemRepo()
	c := New(repo)
	require.NoError(t, c.Put(context.Background(), []store.Problem{problem("a")}))

	got, err := c.GetOrFill(context.Background(), key, func(context.Context) ([]store.Problem, error) {
		t.Fatal("fill called on a warm key")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetOrFill_Errors(t *testing.T) {
	boom := errors.New("generator down")
	c := New(newMemRepo())
	_, err := c.GetOrFill(context.Background(), key, func(context.Context) ([]store.Problem, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := c.GetOrFill(context.Background(), key, nil)
	assert.NoError(t, err)
	assert.Empty(t, got)

	repo := newMemRepo()
	repo.getErr = errors.New("db down")
	_, err = New(repo).GetOrFill(context.Background(), key, func(context.Context) ([]store.Problem, error) {
		t.Fatal("fill called after a store failure")
		return nil, nil
	})
	assert.Error(t, err)
}

func TestNewRedisClient_Disabled(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestRedisReadThrough(t *testing.T) {
	addr := os.Getenv("KINDERPATH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KINDERPATH_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() {
		rdb.Del(ctx, redisKey(key))
		rdb.Close()
	})
	rdb.Del(ctx, redisKey(key))

	repo := newMemRepo()
	c := New(repo, WithRedis(rdb, time.Minute))
	require.NoError(t, c.Put(ctx, []store.Problem{problem("a")}))

	_, err = c.Get(ctx, key)
	require.NoError(t, err)
	before := repo.gets

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, before, repo.gets, "second read should be served by redis")

	require.NoError(t, c.Put(ctx, []store.Problem{problem("b")}))
	got, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
