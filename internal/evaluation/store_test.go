package evaluation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSaver struct {
	mu        sync.Mutex
	gradeErr  error
	grades    map[string]float64
	gradeCall int
	comments  map[string]string
	commErr   error

	// onGrade, when set, runs outside the lock before a grade is recorded.
	onGrade func(call int, point float64) error
}

func newFakeSaver() *fakeSaver {
	return &fakeSaver{grades: map[string]float64{}, comments: map[string]string{}}
}

func (f *fakeSaver) GradeItem(_ context.Context, itemID string, point float64) error {
	f.mu.Lock()
	f.gradeCall++
	call, hook := f.gradeCall, f.onGrade
	f.mu.Unlock()
	if hook != nil {
		if err := hook(call, point); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gradeErr != nil {
		return f.gradeErr
	}
	f.grades[itemID] = point
	return nil
}

func (f *fakeSaver) UpdateComment(_ context.Context, id, comment string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commErr != nil {
		return f.commErr
	}
	f.comments[id] = comment
	return nil
}

func seedState() State {
	s := SetComponents(State{}, []Component{
		{ID: "c1", TypeName: "BUSINESS_MODEL", MaximumPoint: 10},
		{ID: "c2", TypeName: "TEAM", MaximumPoint: 5, ActualPoint: Point(4)},
	})
	return SetItems(s, "c1", []Item{
		{ID: "i1", EvaluationID: "c1", MaxPoint: 4},
		{ID: "i2", EvaluationID: "c1", MaxPoint: 6, ActualPoint: Point(5)},
	})
}

func TestApplyItemPointRecomputesComponent(t *testing.T) {
	s := seedState()
	if AreAllEvaluationsScored(s) {
		t.Fatalf("c1 has an unscored item")
	}
	ns, v, err := ApplyItemPoint(s, "i1", 3)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if v != 1 {
		t.Fatalf("version = %d, want 1", v)
	}
	c, _ := ns.Component("c1")
	if c.ActualPoint == nil || *c.ActualPoint != 8 {
		t.Fatalf("component actual = %v, want 8", c.ActualPoint)
	}
	if !AreAllEvaluationsScored(ns) {
		t.Fatalf("expected all scored")
	}
	// input state is untouched
	if orig, _ := s.Component("c1"); orig.ActualPoint != nil {
		t.Fatalf("reducer mutated its input")
	}
}

func TestApplyItemPointUnknownItem(t *testing.T) {
	if _, _, err := ApplyItemPoint(seedState(), "nope", 1); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestRevertOnlyCurrentVersion(t *testing.T) {
	s := seedState()
	s, v1, _ := ApplyItemPoint(s, "i2", 1)
	s, v2, _ := ApplyItemPoint(s, "i2", 2)

	// stale failure must not clobber the newer write
	s = RevertItemPoint(s, "i2", v1)
	it, _, _ := s.FindItem("i2")
	if *it.ActualPoint != 2 {
		t.Fatalf("stale revert changed value to %v", *it.ActualPoint)
	}
	s = RevertItemPoint(s, "i2", v2)
	it, _, _ = s.FindItem("i2")
	if *it.ActualPoint != 5 {
		t.Fatalf("revert should restore last good value 5, got %v", *it.ActualPoint)
	}
}

func TestAreAllEvaluationsScoredEmpty(t *testing.T) {
	if AreAllEvaluationsScored(State{}) {
		t.Fatalf("no components must not be scorable")
	}
	s := SetComponents(State{}, []Component{{ID: "a", ActualPoint: Point(1)}, {ID: "b"}})
	if AreAllEvaluationsScored(s) {
		t.Fatalf("a null actual point must block submission")
	}
}

func TestWriterScoreItemPersists(t *testing.T) {
	st := NewStore()
	_ = st.Update(func(State) (State, error) { return seedState(), nil })
	saver := newFakeSaver()
	w := NewWriter(st, saver)

	if err := w.ScoreItem(context.Background(), "i1", 4); err != nil {
		t.Fatalf("score: %v", err)
	}
	if saver.grades["i1"] != 4 {
		t.Fatalf("backend did not receive grade")
	}
	it, _, _ := st.Snapshot().FindItem("i1")
	if it.ActualPoint == nil || *it.ActualPoint != 4 {
		t.Fatalf("local value = %v", it.ActualPoint)
	}
}

func TestWriterScoreItemRollsBack(t *testing.T) {
	st := NewStore()
	_ = st.Update(func(State) (State, error) { return seedState(), nil })
	saver := newFakeSaver()
	saver.gradeErr = errors.New("boom")
	w := NewWriter(st, saver)

	if err := w.ScoreItem(context.Background(), "i2", 1); err == nil {
		t.Fatalf("expected error")
	}
	it, _, _ := st.Snapshot().FindItem("i2")
	if *it.ActualPoint != 5 {
		t.Fatalf("expected rollback to 5, got %v", *it.ActualPoint)
	}
}

func TestWriterCommentRollsBack(t *testing.T) {
	st := NewStore()
	_ = st.Update(func(State) (State, error) { return seedState(), nil })
	saver := newFakeSaver()
	w := NewWriter(st, saver)

	if err := w.CommentComponent(context.Background(), "c1", "solid plan"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	saver.commErr = errors.New("down")
	if err := w.CommentComponent(context.Background(), "c1", "changed"); err == nil {
		t.Fatalf("expected error")
	}
	c, _ := st.Snapshot().Component("c1")
	if c.Comment != "solid plan" {
		t.Fatalf("comment = %q", c.Comment)
	}
}

func TestWriterNewerWriteWinsOverFailedOlder(t *testing.T) {
	st := NewStore()
	_ = st.Update(func(State) (State, error) { return seedState(), nil })
	saver := newFakeSaver()
	started, release := make(chan struct{}), make(chan struct{})
	saver.onGrade = func(call int, point float64) error {
		if call == 1 {
			close(started)
			<-release
			return errors.New("gateway timeout")
		}
		return nil
	}
	w := NewWriter(st, saver)
	ctx := context.Background()

	errs := make(chan error, 2)
	go func() { errs <- w.ScoreItem(ctx, "i1", 1) }()
	<-started
	go func() { errs <- w.ScoreItem(ctx, "i1", 3) }()

	// wait until the second write is applied locally and queued behind the first
	deadline := time.Now().Add(2 * time.Second)
	for st.Snapshot().Version("i1") != 2 {
		if time.Now().After(deadline) {
			t.Fatal("second write never applied")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)

	failed := 0
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one failed write, got %d", failed)
	}

	it, _, _ := st.Snapshot().FindItem("i1")
	if it.ActualPoint == nil || *it.ActualPoint != 3 {
		t.Fatalf("local value = %v, want 3", it.ActualPoint)
	}
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if saver.grades["i1"] != 3 || saver.gradeCall != 2 {
		t.Fatalf("backend value %v after %d calls, want 3 after 2", saver.grades["i1"], saver.gradeCall)
	}
	c, _ := st.Snapshot().Component("c1")
	if c.ActualPoint == nil || *c.ActualPoint != 8 {
		t.Fatalf("component actual = %v, want 8", c.ActualPoint)
	}
}

func TestWriterConcurrentWritesLastQueuedWins(t *testing.T) {
	st := NewStore()
	_ = st.Update(func(State) (State, error) { return seedState(), nil })
	saver := newFakeSaver()
	w := NewWriter(st, saver)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			_ = w.ScoreItem(context.Background(), "i1", p*0.5)
		}(float64(i))
	}
	wg.Wait()

	// whichever write was applied last locally must also be what the backend holds
	it, _, _ := st.Snapshot().FindItem("i1")
	if it.ActualPoint == nil {
		t.Fatal("item left unscored")
	}
	if saver.grades["i1"] != *it.ActualPoint {
		t.Fatalf("local %v backend %v", *it.ActualPoint, saver.grades["i1"])
	}
	if saver.gradeCall < 1 || saver.gradeCall > 8 {
		t.Fatalf("grade calls = %d", saver.gradeCall)
	}
}
