package evaluation

import (
	"context"
	"log"
	"sync"
)

// Store holds the State of one review session. All writes go through Update,
// so reducers run one at a time.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store { return &Store{state: State{}.clone()} }

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Update applies fn to the current state. If fn fails the state is unchanged.
func (s *Store) Update(fn func(State) (State, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, err := fn(s.state)
	if err != nil {
		return err
	}
	s.state = ns
	return nil
}

// Saver persists score and comment changes to the backend.
type Saver interface {
	GradeItem(ctx context.Context, itemID string, point float64) error
	UpdateComment(ctx context.Context, evaluationID, comment string) error
}

// Writer applies local changes optimistically and then persists them.
// Backend writes are serialized per evaluation component so responses for the
// same component cannot arrive out of order.
type Writer struct {
	store *Store
	saver Saver

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewWriter(store *Store, saver Saver) *Writer {
	return &Writer{store: store, saver: saver, locks: map[string]*sync.Mutex{}}
}

func (w *Writer) lockFor(componentID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[componentID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[componentID] = l
	}
	return l
}

// ScoreItem sets an item's point locally, then persists it. On failure the
// local value is rolled back to the last confirmed one.
func (w *Writer) ScoreItem(ctx context.Context, itemID string, point float64) error {
	var (
		version uint64
		compID  string
	)
	err := w.store.Update(func(s State) (State, error) {
		ns, v, err := ApplyItemPoint(s, itemID, point)
		if err != nil {
			return s, err
		}
		_, compID, _ = s.FindItem(itemID)
		version = v
		return ns, nil
	})
	if err != nil {
		return err
	}

	l := w.lockFor(compID)
	l.Lock()
	defer l.Unlock()

	// A newer local write for this item is queued behind us; it carries the
	// value the reviewer wants, so this one is dropped.
	if w.store.Snapshot().Version(itemID) != version {
		return nil
	}
	if err := w.saver.GradeItem(ctx, itemID, point); err != nil {
		log.Printf("grade item %s (v%d) failed, reverting: %v", itemID, version, err)
		_ = w.store.Update(func(s State) (State, error) {
			return RevertItemPoint(s, itemID, version), nil
		})
		return err
	}
	return w.store.Update(func(s State) (State, error) {
		return ConfirmItemPoint(s, itemID, version, point), nil
	})
}

func (w *Writer) CommentComponent(ctx context.Context, componentID, comment string) error {
	var prev string
	err := w.store.Update(func(s State) (State, error) {
		ns, p, err := SetComment(s, componentID, comment)
		prev = p
		return ns, err
	})
	if err != nil {
		return err
	}

	l := w.lockFor(componentID)
	l.Lock()
	defer l.Unlock()

	if err := w.saver.UpdateComment(ctx, componentID, comment); err != nil {
		log.Printf("comment on evaluation %s failed, reverting: %v", componentID, err)
		_ = w.store.Update(func(s State) (State, error) {
			return RevertComment(s, componentID, comment, prev), nil
		})
		return err
	}
	return nil
}
