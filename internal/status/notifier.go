// Package status holds the single transient status message shown to the user.
package status

import (
	"sync"
	"time"
)

// Message is the text currently shown in the status region
type Message struct {
	Text         string
	Success      bool
	VisibleUntil time.Time
}

// Timer is the handle of a pending expiry
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Notifier)

// WithOnChange registers a callback fired after every show and every expiry
func WithOnChange(f func()) Option {
	return func(n *Notifier) {
		n.onChange = f
	}
}

// WithClock replaces the timer and time source, used by tests
func WithClock(afterFunc AfterFunc, now func() time.Time) Option {
	return func(n *Notifier) {
		n.afterFunc = afterFunc
		n.now = now
	}
}

// Notifier keeps at most one message. Each Show replaces the previous message and cancels
// its expiry timer before arming a new one.
type Notifier struct {
	delay     time.Duration
	afterFunc AfterFunc
	now       func() time.Time
	onChange  func()

	mu         sync.Mutex
	current    Message
	visible    bool
	generation uint64
	timer      Timer
}

func New(delay time.Duration, opts ...Option) *Notifier {
	n := &Notifier{
		delay:     delay,
		afterFunc: realAfterFunc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Show replaces the current message and restarts the expiry timer
func (n *Notifier) Show(text string, success bool) Message {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.generation++
	generation := n.generation
	n.current = Message{
		Text:         text,
		Success:      success,
		VisibleUntil: n.now().Add(n.delay),
	}
	n.visible = true
	n.timer = n.afterFunc(n.delay, func() { n.expire(generation) })
	msg := n.current
	n.mu.Unlock()

	n.changed()
	return msg
}

// expire hides the message armed with generation, unless it was replaced meanwhile
func (n *Notifier) expire(generation uint64) {
	n.mu.Lock()
	if generation != n.generation || !n.visible {
		n.mu.Unlock()
		return
	}
	n.visible = false
	n.timer = nil
	n.mu.Unlock()

	n.changed()
}

// Current returns the message and whether it is still visible
func (n *Notifier) Current() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current, n.visible
}

// Stop cancels a pending expiry and hides the message
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.generation++
	n.visible = false
}

func (n *Notifier) changed() {
	if n.onChange != nil {
		n.onChange()
	}
}
