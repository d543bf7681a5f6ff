package app

import (
	"container/list"
	"context"
	"sync"

	"github.com/raysh454/vertex/internal/dom"
)

// LiveSession is an open browser tab a rendered scan was taken from.
type LiveSession interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (*dom.Document, error)
	Highlight(ctx context.Context, path string) (bool, error)
	Focus(ctx context.Context, path string) (bool, error)
	Close() error
}

// SessionFactory opens a new LiveSession.
type SessionFactory func(ctx context.Context) (LiveSession, error)

// sessionCache keeps the most recently used sessions by report id and closes
// the ones it evicts.
type sessionCache struct {
	mu    sync.Mutex
	cap   int
	order *list.List
	byID  map[string]*list.Element
}

type sessionEntry struct {
	id   string
	sess LiveSession
}

func newSessionCache(capacity int) *sessionCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &sessionCache{
		cap:   capacity,
		order: list.New(),
		byID:  make(map[string]*list.Element),
	}
}

func (c *sessionCache) get(id string) (LiveSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*sessionEntry).sess, true
}

// put stores sess under id and returns the sessions that no longer fit.
func (c *sessionCache) put(id string, sess LiveSession) []LiveSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	var evicted []LiveSession
	if el, ok := c.byID[id]; ok {
		old := el.Value.(*sessionEntry)
		if old.sess != sess {
			evicted = append(evicted, old.sess)
		}
		old.sess = sess
		c.order.MoveToFront(el)
		return evicted
	}
	c.byID[id] = c.order.PushFront(&sessionEntry{id: id, sess: sess})
	for c.order.Len() > c.cap {
		el := c.order.Back()
		e := el.Value.(*sessionEntry)
		c.order.Remove(el)
		delete(c.byID, e.id)
		evicted = append(evicted, e.sess)
	}
	return evicted
}

func (c *sessionCache) remove(id string) LiveSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.byID[id]
	if !ok {
		return nil
	}
	c.order.Remove(el)
	delete(c.byID, id)
	return el.Value.(*sessionEntry).sess
}

func (c *sessionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// drain empties the cache and returns every session it held.
func (c *sessionCache) drain() []LiveSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LiveSession, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*sessionEntry).sess)
	}
	c.order.Init()
	c.byID = make(map[string]*list.Element)
	return out
}
