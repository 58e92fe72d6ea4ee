package verify

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/model"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// ErrDivergence is returned when an engine's observable behavior differs
// from the model's.
var ErrDivergence = errors.New("verify: engine diverged from model")

const maxStaleKeys = 256

// RunConfig configures a model-vs-real run.
type RunConfig struct {
	// MaxOps is the maximum number of operations to execute.
	MaxOps int

	// ValidateEveryN runs the engine's Validate and the full state
	// comparison every N operations. 0 checks only at the end.
	ValidateEveryN int

	// HistoryLen is how many trailing ops a divergence error shows.
	HistoryLen int
}

// DefaultRunConfig returns a configuration that checks after every op.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		MaxOps:         2000,
		ValidateEveryN: 1,
		HistoryLen:     32,
	}
}

// Report summarizes a successful run.
type Report struct {
	Ops        int
	MaxLen     int
	Len        int
	Slots      int
	Retired    int
	FreeBlocks int
}

// blockLister is implemented by engines that expose their vacant runs.
type blockLister interface {
	FreeBlocks() iter.Seq2[int, int]
}

type runner[V version.Version[V]] struct {
	engine  arena.Engine[int, V]
	model   *model.Model[int]
	live    map[int]key.Key[V]
	stale   []key.Key[V]
	history []Op
}

// Run applies the generator's operations to engine and to a fresh model,
// comparing every observable result. engine must be empty.
func Run[V version.Version[V]](ctx context.Context, engine arena.Engine[int, V], gen *OpGenerator, cfg RunConfig) (Report, error) {
	if cfg.MaxOps <= 0 {
		return Report{}, errors.New("verify: MaxOps must be > 0")
	}

	if !engine.IsEmpty() {
		return Report{}, errors.New("verify: engine must start empty")
	}

	r := &runner[V]{
		engine: engine,
		model:  model.New[int](),
		live:   make(map[int]key.Key[V]),
	}

	var report Report

	for n := 1; n <= cfg.MaxOps && gen.HasMore(); n++ {
		err := ctx.Err()
		if err != nil {
			return report, err
		}

		op := gen.NextOp()
		r.record(op, cfg.HistoryLen)

		err = r.apply(op)
		if err == nil && cfg.ValidateEveryN > 0 && n%cfg.ValidateEveryN == 0 {
			err = r.check()
		}

		if err != nil {
			return report, fmt.Errorf("%w: op %d %s: %w\n%s", ErrDivergence, n, op, err, FormatOps(r.history))
		}

		report.Ops = n
		report.MaxLen = max(report.MaxLen, engine.Len())
	}

	err := r.check()
	if err != nil {
		return report, fmt.Errorf("%w: final state: %w\n%s", ErrDivergence, err, FormatOps(r.history))
	}

	stats := engine.Stats()
	report.Len = stats.Len
	report.Slots = stats.Slots
	report.Retired = stats.Retired
	report.FreeBlocks = stats.FreeBlocks

	return report, nil
}

func (r *runner[V]) record(op Op, keep int) {
	r.history = append(r.history, op)
	if keep > 0 && len(r.history) > keep {
		r.history = r.history[len(r.history)-keep:]
	}
}

func (r *runner[V]) apply(op Op) error {
	switch op.Kind {
	case OpInsert:
		return r.insert(op.Value)
	case OpRemove:
		if k, ok := r.pickLive(op.Pick); ok {
			return r.remove(k, false)
		}
	case OpRemoveStale:
		if k, ok := r.pickStale(op.Pick); ok {
			return r.remove(k, false)
		}
	case OpDelete:
		if k, ok := r.pickAny(op.Pick); ok {
			return r.remove(k, true)
		}
	case OpGet:
		if k, ok := r.pickAny(op.Pick); ok {
			return r.get(k)
		}
	case OpGetRaw:
		return r.getRaw(op.Pick % (r.engine.Stats().Slots + 2))
	case OpParseKey:
		return r.parseKey(op.Pick % (r.engine.Stats().Slots + 2))
	case OpRetain:
		return r.retain(op.Mod)
	case OpDrainFilter:
		return r.drainFilter(op.Mod, op.Stop)
	case OpReserve:
		return r.reserve(op.Value)
	case OpIterate:
		return r.iterate()
	case OpDeleteAll:
		r.engine.DeleteAll()

		for _, idx := range r.model.Indexes() {
			r.forget(idx)
		}
	case OpClear:
		r.engine.Clear()
		r.model.Clear()
		clear(r.live)
		r.stale = nil
	}

	return nil
}

func (r *runner[V]) pickLive(pick int) (key.Key[V], bool) {
	indexes := r.model.Indexes()
	if len(indexes) == 0 {
		return key.Key[V]{}, false
	}

	return r.live[indexes[pick%len(indexes)]], true
}

func (r *runner[V]) pickStale(pick int) (key.Key[V], bool) {
	if len(r.stale) == 0 {
		return key.Key[V]{}, false
	}

	return r.stale[pick%len(r.stale)], true
}

func (r *runner[V]) pickAny(pick int) (key.Key[V], bool) {
	if pick%4 == 0 {
		if k, ok := r.pickStale(pick / 4); ok {
			return k, true
		}
	}

	return r.pickLive(pick / 4)
}

// forget removes the live entry at idx from the model side, retiring the
// slot if its version is exhausted.
func (r *runner[V]) forget(idx int) {
	k, ok := r.live[idx]
	if !ok {
		return
	}

	r.model.Remove(idx, k.Version().Generation())

	if _, reusable := k.Version().MarkEmpty(); !reusable {
		r.model.Retire(idx)
	}

	delete(r.live, idx)

	r.stale = append(r.stale, k)
	if len(r.stale) > maxStaleKeys {
		r.stale = r.stale[1:]
	}
}

func (r *runner[V]) insert(value int) error {
	k := r.engine.Insert(value)
	if !k.Version().IsFull() {
		return fmt.Errorf("insert returned key %v with a vacant version", k)
	}

	err := r.model.Insert(k.Index(), k.Version().Generation(), value)
	if err != nil {
		return err
	}

	r.live[k.Index()] = k

	return nil
}

func (r *runner[V]) remove(k key.Key[V], viaDelete bool) error {
	want, wantOK := r.model.Lookup(k.Index(), k.Version().Generation())

	var (
		got   int
		gotOK bool
	)

	if viaDelete {
		gotOK = r.engine.Delete(k)
		got = want
	} else {
		got, gotOK = r.engine.TryRemove(k)
	}

	if gotOK != wantOK {
		return fmt.Errorf("remove %v: engine found=%v, model found=%v", k, gotOK, wantOK)
	}

	if !gotOK {
		return nil
	}

	if got != want {
		return fmt.Errorf("remove %v: engine returned %d, model %d", k, got, want)
	}

	r.forget(k.Index())

	return nil
}

func (r *runner[V]) get(k key.Key[V]) error {
	want, wantOK := r.model.Lookup(k.Index(), k.Version().Generation())
	got, gotOK := r.engine.Get(k)

	if gotOK != wantOK || got != want {
		return fmt.Errorf("get %v: engine (%d, %v), model (%d, %v)", k, got, gotOK, want, wantOK)
	}

	if r.engine.Contains(k) != wantOK {
		return fmt.Errorf("contains %v disagrees with get", k)
	}

	if p := r.engine.GetMut(k); (p != nil) != wantOK || (p != nil && *p != want) {
		return fmt.Errorf("get-mut %v disagrees with get", k)
	}

	return nil
}

func (r *runner[V]) getRaw(idx int) error {
	want, wantOK := r.model.LookupRaw(idx)
	got, gotOK := r.engine.Get(key.Index[V](idx))

	if gotOK != wantOK || got != want {
		return fmt.Errorf("get raw %d: engine (%d, %v), model (%d, %v)", idx, got, gotOK, want, wantOK)
	}

	return nil
}

func (r *runner[V]) parseKey(idx int) error {
	got, gotOK := r.engine.ParseKey(idx)
	want, wantOK := r.live[idx]

	if gotOK != wantOK || (gotOK && got != want) {
		return fmt.Errorf("parse key %d: engine (%v, %v), model (%v, %v)", idx, got, gotOK, want, wantOK)
	}

	return nil
}

func (r *runner[V]) matching(mod int) []int {
	var out []int

	for idx, entry := range r.model.Entries() {
		if entry.Value%mod == 0 {
			out = append(out, idx)
		}
	}

	return out
}

func (r *runner[V]) retain(mod int) error {
	doomed := r.matching(mod)

	r.engine.Retain(func(v *int) bool { return *v%mod != 0 })

	for _, idx := range doomed {
		r.forget(idx)
	}

	if r.engine.Len() != r.model.Len() {
		return fmt.Errorf("retain: engine len %d, model len %d", r.engine.Len(), r.model.Len())
	}

	return nil
}

func (r *runner[V]) drainFilter(mod, stop int) error {
	doomed := r.matching(mod)

	matches := make(map[int]bool, len(doomed))
	for _, idx := range doomed {
		v, _ := r.model.LookupRaw(idx)
		matches[v] = true
	}

	var yielded []int

	for v := range r.engine.DrainFilter(func(v *int) bool { return *v%mod == 0 }) {
		yielded = append(yielded, v)
		if len(yielded) > stop {
			break
		}
	}

	for _, idx := range doomed {
		r.forget(idx)
	}

	if want := min(stop+1, len(doomed)); len(yielded) != want {
		return fmt.Errorf("drain filter yielded %d values, want %d", len(yielded), want)
	}

	for _, v := range yielded {
		if !matches[v] {
			return fmt.Errorf("drain filter yielded %d which does not match or was yielded twice", v)
		}

		delete(matches, v)
	}

	return nil
}

func (r *runner[V]) reserve(additional int) error {
	r.engine.Reserve(additional)

	if got, want := r.engine.Capacity(), r.engine.Len()+additional; got < want {
		return fmt.Errorf("reserve %d: capacity %d, want at least %d", additional, got, want)
	}

	return nil
}

func (r *runner[V]) iterate() error {
	var forward []key.Key[V]

	for k, v := range r.engine.All() {
		want, ok := r.model.Lookup(k.Index(), k.Version().Generation())
		if !ok || want != *v {
			return fmt.Errorf("iterate yielded %v=%d, model (%d, %v)", k, *v, want, ok)
		}

		forward = append(forward, k)
	}

	if len(forward) != r.model.Len() {
		return fmt.Errorf("iterate yielded %d entries, model has %d", len(forward), r.model.Len())
	}

	var backward []key.Key[V]
	for k := range r.engine.Backward() {
		backward = append(backward, k)
	}

	slices.Reverse(backward)

	if !slices.Equal(forward, backward) {
		return errors.New("backward iteration is not the reverse of forward iteration")
	}

	return nil
}

// check compares whole-state properties and runs the engine's own
// structural validation.
func (r *runner[V]) check() error {
	err := r.engine.Validate()
	if err != nil {
		return err
	}

	if r.engine.Len() != r.model.Len() {
		return fmt.Errorf("engine len %d, model len %d", r.engine.Len(), r.model.Len())
	}

	stats := r.engine.Stats()
	if stats.Retired != r.model.Retired() {
		return fmt.Errorf("engine retired %d slots, model %d", stats.Retired, r.model.Retired())
	}

	lister, ok := r.engine.(blockLister)
	if !ok {
		return nil
	}

	var got []model.Run
	for lo, hi := range lister.FreeBlocks() {
		got = append(got, model.Run{Lo: lo, Hi: hi})
	}

	slices.SortFunc(got, func(x, y model.Run) int { return x.Lo - y.Lo })

	want := r.model.FreeRuns(1, stats.Slots+1)
	if !slices.Equal(got, want) {
		return fmt.Errorf("free blocks %v, model runs %v", got, want)
	}

	return nil
}
