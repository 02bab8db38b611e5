package game

import "time"

// Scheduler runs f once after d. The returned func stops the pending call and
// reports whether it was still pending.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

type timerKind int

const (
	timerCountdown timerKind = iota
	timerGrace
	timerTieReveal
	timerTieFallback
	timerIdle
)

func (k timerKind) String() string {
	switch k {
	case timerCountdown:
		return "countdown"
	case timerGrace:
		return "grace"
	case timerTieReveal:
		return "tie-reveal"
	case timerTieFallback:
		return "tie-fallback"
	case timerIdle:
		return "idle"
	default:
		return "unknown"
	}
}

type roomTimer struct {
	stop func() bool
}

// startTimer replaces any timer of the same kind. The callback runs with the
// registry lock held and only if the room is still live and the handle is
// still the current one for its kind.
func (reg *Registry) startTimer(room *Room, kind timerKind, d time.Duration, fire func()) {
	reg.stopTimer(room, kind)
	handle := &roomTimer{}
	room.timers[kind] = handle
	handle.stop = reg.scheduler.AfterFunc(d, func() {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		if room.timers[kind] != handle || reg.rooms[room.code] != room {
			return
		}
		delete(room.timers, kind)
		fire()
	})
}

func (reg *Registry) stopTimer(room *Room, kind timerKind) {
	if handle, ok := room.timers[kind]; ok {
		delete(room.timers, kind)
		if handle.stop != nil {
			handle.stop()
		}
	}
}

func (reg *Registry) stopAllTimers(room *Room) {
	for kind := range room.timers {
		reg.stopTimer(room, kind)
	}
}
