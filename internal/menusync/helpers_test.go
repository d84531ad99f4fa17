package menusync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/menus/internal/menutree"
	"github.com/mesh-intelligence/menus/internal/metrics"
	"github.com/mesh-intelligence/menus/internal/sqlite"
	"github.com/mesh-intelligence/menus/pkg/types"
)

var errInjected = errors.New("injected failure")

func newTestBackend(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Open(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Close() })
	return b
}

func createTestMenu(t *testing.T, b *sqlite.Backend, name string) string {
	t.Helper()
	id, err := b.CreateMenu(context.Background(), &types.Menu{Name: name})
	require.NoError(t, err)
	return id
}

// shape renders the stored tree of menuID as one "depth:order:title" line per
// item in depth-first order, so two trees compare equal regardless of ids.
func shape(t *testing.T, b *sqlite.Backend, menuID string) []string {
	t.Helper()
	items, err := b.ListItems(context.Background(), menuID)
	require.NoError(t, err)

	type frame struct {
		node  *menutree.TreeNode
		depth int
	}
	roots := menutree.Build(items)
	var out []string
	var stack []frame
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, fmt.Sprintf("%d:%d:%s", f.depth, f.node.Order, f.node.Title))
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
	return out
}

func itemIDs(t *testing.T, b *sqlite.Backend, menuID string) []string {
	t.Helper()
	items, err := b.ListItems(context.Background(), menuID)
	require.NoError(t, err)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID
	}
	return ids
}

// sampleTree is five nodes over three levels.
func sampleTree(prefix string) []types.NodeDescriptor {
	return []types.NodeDescriptor{
		{Title: prefix + "Home", URL: "/"},
		{Title: prefix + "Browse", Children: []types.NodeDescriptor{
			{Title: prefix + "New", Children: []types.NodeDescriptor{
				{Title: prefix + "Today"},
			}},
			{Title: prefix + "Popular"},
		}},
	}
}

// faultyStore injects failures into transactions run through it.
type faultyStore struct {
	types.ItemStore
	failCreateAt int // zero-based CreateItem call to fail; negative disables.
	failDetach   bool
	failDelete   bool
}

func (f *faultyStore) InTx(ctx context.Context, fn func(ctx context.Context, tx types.ItemTx) error) error {
	return f.ItemStore.InTx(ctx, func(ctx context.Context, tx types.ItemTx) error {
		return fn(ctx, &faultyTx{ItemTx: tx, store: f})
	})
}

type faultyTx struct {
	types.ItemTx
	store   *faultyStore
	creates int
}

func (f *faultyTx) DetachAll(ctx context.Context, menuID string) (int64, error) {
	if f.store.failDetach {
		return 0, errInjected
	}
	return f.ItemTx.DetachAll(ctx, menuID)
}

func (f *faultyTx) DeleteAll(ctx context.Context, menuID string) (int64, error) {
	if f.store.failDelete {
		return 0, errInjected
	}
	return f.ItemTx.DeleteAll(ctx, menuID)
}

func (f *faultyTx) CreateItem(ctx context.Context, item *types.MenuItem) (string, error) {
	if f.creates == f.store.failCreateAt {
		return "", errInjected
	}
	f.creates++
	return f.ItemTx.CreateItem(ctx, item)
}

// fakeRecorder counts recorder calls.
type fakeRecorder struct {
	mu       sync.Mutex
	outcomes map[metrics.Outcome]int
	created  int
	purged   int64
	lockWait  int
	contended int
	duration  int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{outcomes: map[metrics.Outcome]int{}}
}

func (r *fakeRecorder) ObserveSyncDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duration++
}

func (r *fakeRecorder) IncSyncOutcome(o metrics.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[o]++
}

func (r *fakeRecorder) AddItemsCreated(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created += n
}

func (r *fakeRecorder) AddItemsPurged(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purged += n
}

func (r *fakeRecorder) ObserveLockWait(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lockWait++
}

func (r *fakeRecorder) IncLockContended() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contended++
}

func titles(lines []string) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l[strings.LastIndex(l, ":")+1:]
	}
	return strings.Join(parts, ",")
}

// memStore keeps items in memory with no transaction isolation: writes from
// concurrent InTx calls interleave freely. Only the synchronizer's lock can
// keep two replaces of one menu apart.
type memStore struct {
	types.MenuStore // only MenuExists is used

	mu         sync.Mutex
	items      []*types.MenuItem
	seq        int
	active     int
	peak       int
	afterPurge func() // runs between purge and materialize when set
}

func (m *memStore) MenuExists(context.Context, string) (bool, error) { return true, nil }

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx types.ItemTx) error) error {
	m.mu.Lock()
	m.active++
	m.peak = max(m.peak, m.active)
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()
	return fn(ctx, memTx{m})
}

func (m *memStore) ListItems(_ context.Context, menuID string) ([]*types.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.MenuItem
	for _, it := range m.items {
		if it.MenuID == menuID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memStore) peakActive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

type memTx struct{ m *memStore }

func (t memTx) DetachAll(_ context.Context, menuID string) (int64, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var n int64
	for _, it := range t.m.items {
		if it.MenuID == menuID && it.ParentID != nil {
			it.ParentID = nil
			n++
		}
	}
	return n, nil
}

func (t memTx) DeleteAll(_ context.Context, menuID string) (int64, error) {
	t.m.mu.Lock()
	kept := t.m.items[:0]
	var n int64
	for _, it := range t.m.items {
		if it.MenuID == menuID {
			n++
			continue
		}
		kept = append(kept, it)
	}
	t.m.items = kept
	hook := t.m.afterPurge
	t.m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return n, nil
}

func (t memTx) CreateItem(_ context.Context, item *types.MenuItem) (string, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	t.m.seq++
	item.ItemID = fmt.Sprintf("item-%d", t.m.seq)
	t.m.items = append(t.m.items, item)
	return item.ItemID, nil
}
