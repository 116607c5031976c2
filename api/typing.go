package api

import (
	"sync"
	"time"
)

// TypingSilence is how long a typing indicator stays visible without a new keystroke.
const TypingSilence = 3 * time.Second

// TypingTracker turns keystrokes into typing:start / typing:stop transitions.
// A start is emitted on the first keystroke, a stop after the silence window
// without any keystroke or on an explicit Stop.
type TypingTracker struct {
	mu         sync.Mutex
	silence    time.Duration
	timer      *time.Timer
	generation uint64
	active     bool
	onStart    func()
	onStop     func()
}

func NewTypingTracker(silence time.Duration, onStart, onStop func()) *TypingTracker {
	return &TypingTracker{silence: silence, onStart: onStart, onStop: onStop}
}

// Keystroke reports activity and restarts the silence window.
func (t *TypingTracker) Keystroke() {
	t.mu.Lock()
	started := !t.active
	t.active = true
	t.generation++
	generation := t.generation
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.silence, func() { t.expire(generation) })
	t.mu.Unlock()

	if started {
		t.onStart()
	}
}

// Stop ends the indicator now, for instance once the message was sent.
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	t.generation++
	t.mu.Unlock()
	t.stop()
}

// expire ignores a timer that fired after a newer keystroke.
func (t *TypingTracker) expire(generation uint64) {
	t.mu.Lock()
	stale := generation != t.generation
	t.mu.Unlock()
	if !stale {
		t.stop()
	}
}

func (t *TypingTracker) stop() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()

	t.onStop()
}

func (t *TypingTracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// TypingIndicator is the receiving side: it shows one indicator per peer on
// typing:show and hides it on typing:hide or, if that frame was lost, after the
// silence window.
type TypingIndicator struct {
	mu       sync.Mutex
	silence  time.Duration
	trackers map[string]*TypingTracker
	onShow   func(userID string)
	onHide   func(userID string)
}

func NewTypingIndicator(silence time.Duration, onShow, onHide func(userID string)) *TypingIndicator {
	return &TypingIndicator{
		silence:  silence,
		trackers: make(map[string]*TypingTracker),
		onShow:   onShow,
		onHide:   onHide,
	}
}

// Show displays or refreshes the indicator of userID.
func (i *TypingIndicator) Show(userID string) {
	i.tracker(userID).Keystroke()
}

// Hide removes the indicator of userID now. Hiding a hidden indicator does nothing.
func (i *TypingIndicator) Hide(userID string) {
	i.tracker(userID).Stop()
}

func (i *TypingIndicator) Visible(userID string) bool {
	return i.tracker(userID).Active()
}

func (i *TypingIndicator) tracker(userID string) *TypingTracker {
	i.mu.Lock()
	defer i.mu.Unlock()
	t, ok := i.trackers[userID]
	if !ok {
		t = NewTypingTracker(i.silence,
			func() { i.onShow(userID) },
			func() { i.onHide(userID) })
		i.trackers[userID] = t
	}
	return t
}
