package purge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSet models a parent-referencing table and refuses to delete rows
// that still have children attached.
type fakeSet struct {
	parents   map[string]map[string]string // scope -> id -> parent id ("" = none)
	calls     []string
	detachErr error
	deleteErr error
}

func (f *fakeSet) DetachAll(_ context.Context, scope string) (int64, error) {
	f.calls = append(f.calls, "detach")
	if f.detachErr != nil {
		return 0, f.detachErr
	}
	rows := f.parents[scope]
	for id := range rows {
		rows[id] = ""
	}
	return int64(len(rows)), nil
}

func (f *fakeSet) DeleteAll(_ context.Context, scope string) (int64, error) {
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	rows := f.parents[scope]
	for _, parent := range rows {
		if parent != "" {
			return 0, errors.New("FOREIGN KEY constraint failed")
		}
	}
	n := int64(len(rows))
	delete(f.parents, scope)
	return n, nil
}

func TestDetachThenDelete(t *testing.T) {
	set := &fakeSet{parents: map[string]map[string]string{
		"m1": {"a": "", "b": "a", "c": "b"},
		"m2": {"x": ""},
	}}

	st, err := DetachThenDelete(context.Background(), set, "m1")
	require.NoError(t, err)
	assert.Equal(t, Stats{Detached: 3, Deleted: 3}, st)
	assert.Equal(t, []string{"detach", "delete"}, set.calls)
	assert.NotContains(t, set.parents, "m1")
	assert.Contains(t, set.parents, "m2", "other scopes must be untouched")
}

func TestDetachThenDeleteEmptyScope(t *testing.T) {
	set := &fakeSet{parents: map[string]map[string]string{}}

	for i := 0; i < 2; i++ {
		st, err := DetachThenDelete(context.Background(), set, "missing")
		require.NoError(t, err)
		assert.Equal(t, Stats{}, st)
	}
}

func TestDetachThenDeleteErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("detach failure stops before delete", func(t *testing.T) {
		set := &fakeSet{parents: map[string]map[string]string{"m": {"a": ""}}, detachErr: boom}
		_, err := DetachThenDelete(context.Background(), set, "m")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"detach"}, set.calls)
	})

	t.Run("delete failure is wrapped", func(t *testing.T) {
		set := &fakeSet{parents: map[string]map[string]string{"m": {"a": ""}}, deleteErr: boom}
		st, err := DetachThenDelete(context.Background(), set, "m")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, int64(1), st.Detached)
	})
}
