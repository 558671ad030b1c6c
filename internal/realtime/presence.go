package realtime

import (
	"sort"
	"sync"
	"time"
)

// TypingTTL is how long a typing signal stays live without a refresh.
// Clients re-send on keystrokes; 2s of silence clears the indicator.
const TypingTTL = 2 * time.Second

// Coordinator tracks ephemeral typing state per conversation. Nothing
// here is persisted: state lives only as long as the signals that feed
// it, and a sweeper clears entries whose TTL lapsed.
type Coordinator struct {
	mu     sync.Mutex
	typing map[string]map[string]time.Time // conversation -> user -> last signal

	// onChange, when set, is invoked with the conversation id after
	// every effective state change (including sweeper expiry).
	onChange func(conversationID string)

	ttl  time.Duration
	done chan struct{}

	now func() time.Time // injectable clock for tests
}

// NewCoordinator creates a presence coordinator with the given TTL
func NewCoordinator(ttl time.Duration) *Coordinator {
	if ttl <= 0 {
		ttl = TypingTTL
	}
	return &Coordinator{
		typing: make(map[string]map[string]time.Time),
		ttl:    ttl,
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// OnChange registers the broadcast hook. Must be called before Run.
func (c *Coordinator) OnChange(fn func(conversationID string)) {
	c.onChange = fn
}

// SetTyping records or clears a user's typing signal. Fire-and-forget:
// there is no acknowledgement and no error path.
func (c *Coordinator) SetTyping(conversationID, userID string, typing bool) {
	c.mu.Lock()
	changed := false
	if typing {
		if c.typing[conversationID] == nil {
			c.typing[conversationID] = make(map[string]time.Time)
		}
		_, present := c.typing[conversationID][userID]
		c.typing[conversationID][userID] = c.now()
		changed = !present
	} else {
		if users, ok := c.typing[conversationID]; ok {
			if _, present := users[userID]; present {
				delete(users, userID)
				changed = true
				if len(users) == 0 {
					delete(c.typing, conversationID)
				}
			}
		}
	}
	c.mu.Unlock()

	if changed && c.onChange != nil {
		c.onChange(conversationID)
	}
}

// Typing returns who is currently typing in a conversation, excluding
// the viewer themself. Expired entries are filtered even between
// sweeper passes.
func (c *Coordinator) Typing(conversationID, viewerID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	users, ok := c.typing[conversationID]
	if !ok {
		return nil
	}
	cutoff := c.now().Add(-c.ttl)
	var out []string
	for userID, last := range users {
		if userID == viewerID || last.Before(cutoff) {
			continue
		}
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}

// ClearUser drops the user's typing state everywhere (disconnect path)
func (c *Coordinator) ClearUser(userID string) {
	c.mu.Lock()
	var changed []string
	for convID, users := range c.typing {
		if _, ok := users[userID]; ok {
			delete(users, userID)
			changed = append(changed, convID)
			if len(users) == 0 {
				delete(c.typing, convID)
			}
		}
	}
	c.mu.Unlock()

	if c.onChange != nil {
		for _, convID := range changed {
			c.onChange(convID)
		}
	}
}

// Run sweeps expired entries until Stop is called
func (c *Coordinator) Run() {
	ticker := time.NewTicker(c.ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

// Stop terminates the sweeper
func (c *Coordinator) Stop() {
	close(c.done)
}

func (c *Coordinator) sweep() {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	var changed []string
	for convID, users := range c.typing {
		expired := false
		for userID, last := range users {
			if last.Before(cutoff) {
				delete(users, userID)
				expired = true
			}
		}
		if expired {
			changed = append(changed, convID)
		}
		if len(users) == 0 {
			delete(c.typing, convID)
		}
	}
	c.mu.Unlock()

	if c.onChange != nil {
		for _, convID := range changed {
			c.onChange(convID)
		}
	}
}
