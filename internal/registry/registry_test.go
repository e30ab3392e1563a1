package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dengquanbo/gobatis/internal/cache"
	"github.com/dengquanbo/gobatis/internal/mapping"
)

func newStatement(t *testing.T, id string) *mapping.MappedStatement {
	t.Helper()
	source := mapping.NewStaticSQLSource("SELECT 1", nil)
	stmt, err := mapping.NewStatementBuilder(id, source, mapping.CommandSelect).Build()
	require.NoError(t, err)
	return stmt
}

func newResultMap(t *testing.T, id string) *mapping.ResultMap {
	t.Helper()
	rm, err := mapping.NewResultMapBuilder(id, reflect.TypeOf(struct{ ID int }{}), nil).Build()
	require.NoError(t, err)
	return rm
}

func TestRegistry_StatementDuplicatesKeepFirst(t *testing.T) {
	r := New()

	first := newStatement(t, "app.UserMapper.findById")
	second := newStatement(t, "app.UserMapper.findById")

	require.NoError(t, r.AddStatement(first))
	err := r.AddStatement(second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	got, ok := r.Statement("app.UserMapper.findById")
	require.True(t, ok)
	assert.Same(t, first, got, "the first registration stays intact")
}

func TestRegistry_ResultMapDuplicates(t *testing.T) {
	r := New()

	require.NoError(t, r.AddResultMap(newResultMap(t, "app.UserMapper.userMap")))
	assert.Error(t, r.AddResultMap(newResultMap(t, "app.UserMapper.userMap")))
	assert.True(t, r.HasResultMap("app.UserMapper.userMap"))
}

func TestRegistry_ParameterMapDuplicates(t *testing.T) {
	r := New()

	pm, err := mapping.NewParameterMap("app.UserMapper.params", nil, nil)
	require.NoError(t, err)
	require.NoError(t, r.AddParameterMap(pm))
	assert.Error(t, r.AddParameterMap(pm))

	got, ok := r.ParameterMap("app.UserMapper.params")
	require.True(t, ok)
	assert.Same(t, pm, got)
}

func TestRegistry_CacheDuplicates(t *testing.T) {
	r := New()

	require.NoError(t, r.AddCache(cache.NewPerpetualCache("app.UserMapper")))
	assert.Error(t, r.AddCache(cache.NewPerpetualCache("app.UserMapper")))

	_, ok := r.Cache("app.UserMapper")
	assert.True(t, ok)
	_, ok = r.Cache("app.OrderMapper")
	assert.False(t, ok)
	assert.Equal(t, []string{"app.UserMapper"}, r.CacheNamespaces())
}

func TestRegistry_LoadedResources(t *testing.T) {
	r := New()

	assert.False(t, r.IsResourceLoaded("mappers/user.yaml"))
	r.AddLoadedResource("mappers/user.yaml")
	assert.True(t, r.IsResourceLoaded("mappers/user.yaml"))
}

func TestRegistry_ResultMapsFor(t *testing.T) {
	r := New()

	rm := newResultMap(t, "app.UserMapper.userMap")
	source := mapping.NewStaticSQLSource("SELECT 1", nil)
	stmt, err := mapping.NewStatementBuilder("app.UserMapper.findById", source, mapping.CommandSelect).
		ResultMaps([]*mapping.ResultMap{rm}).
		Build()
	require.NoError(t, err)
	require.NoError(t, r.AddStatement(stmt))

	maps, ok := r.ResultMapsFor("app.UserMapper.findById")
	require.True(t, ok)
	require.Len(t, maps, 1)
	assert.Same(t, rm, maps[0])

	_, ok = r.ResultMapsFor("app.UserMapper.missing")
	assert.False(t, ok)
}

// stubResolver counts attempts and succeeds once its dependency flag flips.
type stubResolver struct {
	desc     string
	attempts int
	ready    *bool
	run      func() error
}

func (s *stubResolver) Resolve() error {
	s.attempts++
	if s.run != nil {
		return s.run()
	}
	if s.ready != nil && !*s.ready {
		return Incomplete(s.desc, "dependency not registered")
	}
	return nil
}

func (s *stubResolver) Describe() string { return s.desc }

func TestRegistry_ResolvePendingKeepsIncomplete(t *testing.T) {
	r := New()
	ready := false
	resolver := &stubResolver{desc: "resultMap:app.UserMapper.userMap", ready: &ready}
	r.AddIncompleteResultMap(resolver)

	require.NoError(t, r.ResolvePending())
	assert.Equal(t, 1, r.PendingCount())

	ready = true
	require.NoError(t, r.ResolvePending())
	assert.Equal(t, 0, r.PendingCount())
	assert.Equal(t, 2, resolver.attempts)
}

func TestRegistry_ResolvePendingFatalError(t *testing.T) {
	r := New()
	r.AddIncompleteStatement(&stubResolver{
		desc: "statement:s",
		run:  func() error { return assert.AnError },
	})

	err := r.ResolvePending()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRegistry_FinishLoadFixpoint(t *testing.T) {
	// Chain: the statement resolves only after the result map does, and the
	// result map only after the cache-ref. One FinishLoad drives all three.
	r := New()
	cacheDone := false
	mapDone := false

	r.AddIncompleteStatement(&stubResolver{desc: "statement:s", run: func() error {
		if !mapDone {
			return Incomplete("rm", "result map missing")
		}
		return nil
	}})
	r.AddIncompleteResultMap(&stubResolver{desc: "resultMap:rm", run: func() error {
		if !cacheDone {
			return Incomplete("cache", "cache missing")
		}
		mapDone = true
		return nil
	}})
	r.AddIncompleteCacheRef(&stubResolver{desc: "cacheRef:ns", run: func() error {
		cacheDone = true
		return nil
	}})

	require.NoError(t, r.FinishLoad())
	assert.Equal(t, 0, r.PendingCount())
}

func TestRegistry_FinishLoadDanglingReference(t *testing.T) {
	r := New()
	ready := false
	r.AddIncompleteResultMap(&stubResolver{desc: "resultMap:app.Ghost.map", ready: &ready})

	err := r.FinishLoad()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.Ghost.map")
}

func TestIncompleteError(t *testing.T) {
	err := Incomplete("app.UserMapper", "namespace not loaded yet")
	assert.True(t, IsIncomplete(err))
	assert.Contains(t, err.Error(), "app.UserMapper")
	assert.False(t, IsIncomplete(assert.AnError))
	assert.False(t, IsIncomplete(nil))
}
