package rtdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name  string `json:"name"`
	Plan  string `json:"plan,omitempty"`
	Coins int64  `json:"coins,omitempty"`
}

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "users/u1/profile", profile{Name: "Ana", Plan: "free"}))

	var got profile
	require.NoError(t, s.Get(ctx, "/users/u1/profile/", &got))
	assert.Equal(t, profile{Name: "Ana", Plan: "free"}, got)

	var name string
	require.NoError(t, s.Get(ctx, "users/u1/profile/name", &name))
	assert.Equal(t, "Ana", name)
}

func TestMemoryStoreMissingPathLeavesTarget(t *testing.T) {
	s := NewMemoryStore()

	got := profile{Name: "keep"}
	require.NoError(t, s.Get(context.Background(), "nowhere/at/all", &got))
	assert.Equal(t, "keep", got.Name)

	var m map[string]profile
	require.NoError(t, s.Get(context.Background(), "nowhere", &m))
	assert.Nil(t, m)
}

func TestMemoryStoreUpdateMultiPath(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "a/b", map[string]interface{}{"x": 1, "y": 2}))

	require.NoError(t, s.Update(ctx, "", map[string]interface{}{
		"a/b/x":   10,
		"a/c":     "new",
		"stats/n": 3,
	}))

	var b map[string]int
	require.NoError(t, s.Get(ctx, "a/b", &b))
	assert.Equal(t, map[string]int{"x": 10, "y": 2}, b)

	var c string
	require.NoError(t, s.Get(ctx, "a/c", &c))
	assert.Equal(t, "new", c)
}

func TestMemoryStoreNullDeletesAndPrunesParents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "likes/u1/s1", true))

	require.NoError(t, s.Update(ctx, "likes/u1", map[string]interface{}{"s1": nil}))

	var likes map[string]interface{}
	require.NoError(t, s.Get(ctx, "likes", &likes))
	assert.Nil(t, likes)

	require.NoError(t, s.Set(ctx, "x/y", map[string]interface{}{}))
	var x interface{}
	require.NoError(t, s.Get(ctx, "x", &x))
	assert.Nil(t, x)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "series/s1/episodes/e1", profile{Name: "ep"}))
	require.NoError(t, s.Set(ctx, "series/s1/title", "T"))

	require.NoError(t, s.Delete(ctx, "series/s1/episodes/e1"))

	var series map[string]interface{}
	require.NoError(t, s.Get(ctx, "series/s1", &series))
	assert.Equal(t, map[string]interface{}{"title": "T"}, series)
}

func TestMemoryStorePushKeysAreOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	k1, err := s.Push(ctx, "leads/ABC", profile{Name: "first"})
	require.NoError(t, err)
	k2, err := s.Push(ctx, "leads/ABC", profile{Name: "second"})
	require.NoError(t, err)

	assert.Less(t, k1, k2)
	assert.True(t, ValidKey(k1))

	var leads map[string]profile
	require.NoError(t, s.Get(ctx, "leads/ABC", &leads))
	assert.Equal(t, "first", leads[k1].Name)
	assert.Equal(t, "second", leads[k2].Name)
}

func TestMemoryStoreTransaction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	add := func(n int64) UpdateFn {
		return func(cur Node) (interface{}, error) {
			var coins int64
			if err := cur.Unmarshal(&coins); err != nil {
				return nil, err
			}
			if coins+n < 0 {
				return nil, errors.New("short")
			}
			return coins + n, nil
		}
	}

	require.NoError(t, s.Transaction(ctx, "wallet/coins", add(5)))
	require.NoError(t, s.Transaction(ctx, "wallet/coins", add(3)))
	err := s.Transaction(ctx, "wallet/coins", add(-100))
	require.EqualError(t, err, "short")

	var coins int64
	require.NoError(t, s.Get(ctx, "wallet/coins", &coins))
	assert.Equal(t, int64(8), coins)
}

func TestMemoryStoreIsolatesCallerData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tags := []string{"a"}
	require.NoError(t, s.Set(ctx, "t", map[string]interface{}{"tags": tags}))
	tags[0] = "mutated"

	var got struct {
		Tags []string `json:"tags"`
	}
	require.NoError(t, s.Get(ctx, "t", &got))
	assert.Equal(t, []string{"a"}, got.Tags)
}

func TestJoinAndKeys(t *testing.T) {
	assert.Equal(t, "users/u1/profile", Join("/users/", "", "u1", "profile/"))
	assert.Equal(t, "", Join())

	assert.True(t, ValidKey("abc-123_X"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("a.b"))
	assert.False(t, ValidKey("a/b"))
	assert.False(t, ValidKey("a#b"))
}
