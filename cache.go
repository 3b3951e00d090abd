package connect4

import (
	"container/list"
	"sync"
)

type (
	// historyCache keeps the decoded, committed history of recently used
	// games so a load only has to read the tail of a stream
	historyCache struct {
		cache   map[string]*list.Element
		lru     *list.List
		maxSize int
		mu      sync.Mutex
	}

	history struct {
		events []DomainEvent
		gameID string
	}
)

func newHistoryCache(maxSize int) *historyCache {
	if maxSize <= 0 {
		return nil
	}
	return &historyCache{
		cache:   map[string]*list.Element{},
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached history for a game. The returned slice must not be
// modified
func (c *historyCache) Get(gameID string) []DomainEvent {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[gameID]
	if !ok {
		return nil
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*history).events
}

// Put stores a game's history unless a longer one is already cached
func (c *historyCache) Put(gameID string, events []DomainEvent) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[gameID]; ok {
		h := elem.Value.(*history)
		if len(events) >= len(h.events) {
			h.events = events
		}
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(&history{gameID: gameID, events: events})
	c.cache[gameID] = elem
	if c.lru.Len() > c.maxSize {
		c.evictLast()
	}
}

// Remove drops a game from the cache
func (c *historyCache) Remove(gameID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[gameID]; ok {
		c.lru.Remove(elem)
		delete(c.cache, gameID)
	}
}

func (c *historyCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *historyCache) evictLast() {
	back := c.lru.Back()
	if back != nil {
		c.lru.Remove(back)
		delete(c.cache, back.Value.(*history).gameID)
	}
}
