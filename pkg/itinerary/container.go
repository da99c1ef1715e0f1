package itinerary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	MsgSavedLocally  = "saved locally"
	MsgSyncSucceeded = "saved to cloud"
	MsgSyncFailed    = "saved locally, cloud sync failed"
)

// Store is the backend persistence the container synchronizes with.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Create(ctx context.Context, req SaveRequest) (*Record, error)
	Update(ctx context.Context, id string, req SaveRequest) (*Record, error)
}

type AuthChecker interface {
	IsAuthenticated() bool
}

// Presenter is how the container talks to the user.
type Presenter interface {
	Success(msg string)
	Warning(msg string)
	Error(msg string)
	PromptLogin()
	ShowList()
}

// LocalSaver keeps a local draft of every accepted edit.
type LocalSaver interface {
	SaveDraft(ctx context.Context, key string, doc *Document) error
}

type Option func(*Container)

func WithLocalSaver(s LocalSaver) Option {
	return func(c *Container) { c.local = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Container) { c.logger = l }
}

func WithSyncTimeout(d time.Duration) Option {
	return func(c *Container) {
		if d > 0 {
			c.syncTimeout = d
		}
	}
}

// Container holds the single document being viewed or edited.
//
// Once the document has an id, every accepted mutation schedules a
// full-document update in the background. Syncs run one at a time and
// coalesce: only the newest pending snapshot is sent next. A failed sync never
// undoes the local edit.
type Container struct {
	store       Store
	auth        AuthChecker
	presenter   Presenter
	local       LocalSaver
	logger      *zap.Logger
	syncTimeout time.Duration

	mu       sync.Mutex
	doc      *Document
	id       string
	revision uint64
	pending  *syncJob
	syncing  bool
	wg       sync.WaitGroup
}

type syncJob struct {
	id  string
	doc *Document
}

func NewContainer(store Store, auth AuthChecker, presenter Presenter, opts ...Option) *Container {
	c := &Container{
		store:       store,
		auth:        auth,
		presenter:   presenter,
		logger:      zap.NewNop(),
		syncTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Document returns a copy of the current document, or nil.
func (c *Container) Document() *Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

// ID is the backend identifier, empty while the document is an unsaved preview.
func (c *Container) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Revision increases on every accepted mutation. A caller holding an item
// index from an older revision must re-derive it.
func (c *Container) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

// SetPreview installs a freshly generated, unsaved document.
func (c *Container) SetPreview(doc *Document) error {
	if doc == nil {
		return ErrNoDocument
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.doc = doc.Clone()
	c.id = ""
	c.revision++
	c.mu.Unlock()
	return nil
}

// Load fetches the persisted record and unwraps it. On failure the user is
// told and sent back to the list.
func (c *Container) Load(ctx context.Context, id string) error {
	rec, err := c.store.Get(ctx, id)
	if err == nil && rec == nil {
		err = ErrNotFound
	}
	if err != nil {
		c.presenter.Error(fmt.Sprintf("could not load itinerary %s: %v", id, err))
		c.presenter.ShowList()
		return err
	}

	doc := DocumentFromRecord(rec)
	if err := doc.Validate(); err != nil {
		c.presenter.Error(fmt.Sprintf("itinerary %s is malformed: %v", id, err))
		c.presenter.ShowList()
		return err
	}

	if rec.ID != "" {
		id = rec.ID
	}
	c.mu.Lock()
	c.doc = doc
	c.id = id
	c.revision++
	c.mu.Unlock()
	return nil
}

// ReplaceWhole swaps in a user-edited JSON document. Nothing changes unless
// the text parses and validates.
func (c *Container) ReplaceWhole(text string) error {
	doc, err := ParseDocument([]byte(text))
	if err != nil {
		c.presenter.Error(err.Error())
		return err
	}
	return c.update(func(*Document) (*Document, error) { return doc, nil })
}

// Apply merges one field-group edit.
func (c *Container) Apply(edit Edit) error {
	err := c.mutate(edit.apply)
	if err != nil {
		c.presenter.Error(err.Error())
	}
	return err
}

// InsertItem appends item to the given 1-based day.
func (c *Container) InsertItem(day int, item Item) error {
	err := c.mutate(func(d *Document) error {
		target, err := dayAt(d, day)
		if err != nil {
			return err
		}
		target.Items = append(target.Items, item)
		return nil
	})
	if err != nil {
		c.presenter.Error(err.Error())
	}
	return err
}

// DeleteItem removes the item at index; later items in the day shift down.
func (c *Container) DeleteItem(day, index int) error {
	err := c.mutate(func(d *Document) error {
		target, err := dayAt(d, day)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(target.Items) {
			return fmt.Errorf("%w: day %d has %d items, got index %d", ErrItemOutOfRange, day, len(target.Items), index)
		}
		target.Items = append(target.Items[:index], target.Items[index+1:]...)
		return nil
	})
	if err != nil {
		c.presenter.Error(err.Error())
	}
	return err
}

// Persist sends the whole document to the backend: create when there is no
// id yet, full update otherwise. The returned id becomes the document's.
func (c *Container) Persist(ctx context.Context) (string, error) {
	if c.auth == nil || !c.auth.IsAuthenticated() {
		c.presenter.PromptLogin()
		return "", ErrLoginRequired
	}

	c.mu.Lock()
	if c.doc == nil {
		c.mu.Unlock()
		return "", ErrNoDocument
	}
	snapshot := c.doc.Clone()
	id := c.id
	c.mu.Unlock()

	req := NewSaveRequest(snapshot)
	var (
		rec *Record
		err error
	)
	if id == "" {
		rec, err = c.store.Create(ctx, req)
	} else {
		rec, err = c.store.Update(ctx, id, req)
	}
	if err != nil {
		c.presenter.Error(fmt.Sprintf("save failed: %v", err))
		return "", err
	}

	newID := id
	if rec != nil && rec.ID != "" {
		newID = rec.ID
	}
	if newID == "" {
		c.presenter.Error(ErrMissingID.Error())
		return "", ErrMissingID
	}

	c.mu.Lock()
	c.id = newID
	c.mu.Unlock()

	c.presenter.Success(MsgSyncSucceeded)
	return newID, nil
}

// Wait blocks until no background sync is running.
func (c *Container) Wait() {
	c.wg.Wait()
}

func (c *Container) mutate(fn func(d *Document) error) error {
	return c.update(func(cur *Document) (*Document, error) {
		if cur == nil {
			return nil, ErrNoDocument
		}
		next := cur.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		return next, nil
	})
}

// update runs build under the lock and installs its result if it validates.
func (c *Container) update(build func(cur *Document) (*Document, error)) error {
	c.mu.Lock()
	next, err := build(c.doc)
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.doc = next
	c.revision++
	id := c.id
	if id != "" {
		c.scheduleSyncLocked(syncJob{id: id, doc: next.Clone()})
	}
	c.mu.Unlock()

	c.saveDraft(id, next)
	if id == "" {
		c.presenter.Success(MsgSavedLocally)
	}
	return nil
}

func (c *Container) saveDraft(id string, doc *Document) {
	if c.local == nil {
		return
	}
	key := id
	if key == "" {
		key = "preview"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.local.SaveDraft(ctx, key, doc); err != nil {
		c.logger.Warn("local draft save failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Container) scheduleSyncLocked(job syncJob) {
	c.pending = &job
	if c.syncing {
		return
	}
	c.syncing = true
	c.wg.Add(1)
	go c.syncLoop()
}

func (c *Container) syncLoop() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		job := c.pending
		c.pending = nil
		if job == nil {
			c.syncing = false
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), c.syncTimeout)
		_, err := c.store.Update(ctx, job.id, NewSaveRequest(job.doc))
		cancel()

		if err != nil {
			c.logger.Warn("background sync failed",
				zap.String("itinerary_id", job.id),
				zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)),
				zap.Error(err))
			c.presenter.Warning(MsgSyncFailed)
			continue
		}
		c.presenter.Success(MsgSyncSucceeded)
	}
}
