package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// MotionEvent captures a timing-critical event for post-mortem analysis
type MotionEvent struct {
	EventType uint8  // Event type code
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtArm        = 1 // move command armed the generator
	EvtStep       = 2 // step pulse emitted
	EvtRampFreeze = 3 // acceleration frozen (speed cap or midpoint)
	EvtDecel      = 4 // deceleration phase entered
	EvtDegenerate = 5 // decel recurrence clamped (ramp index exhausted)
	EvtDone       = 6 // move complete, generator disarmed
)

const (
	MotionRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active.
	// Disabled by default; step timing is sensitive to output stalls.
	debugEnabled bool = false

	// Motion event ring buffer (non-blocking, for post-mortem)
	motionRing     [MotionRingSize]MotionEvent
	motionRingHead uint8
	motionEnabled  bool = true

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function.
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine.
// Call this from main() after SetDebugWriter.
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Blocks if debug is enabled (use DebugAsync for non-blocking).
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking).
// Drops the message if the channel is full.
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordMotion captures a motion event in the ring buffer.
// Always non-blocking and cheap enough for the timer handler.
func RecordMotion(eventType uint8, clock, value1, value2 uint32) {
	if !motionEnabled {
		return
	}
	idx := motionRingHead
	motionRing[idx] = MotionEvent{
		EventType: eventType,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	motionRingHead = (idx + 1) % MotionRingSize
}

// DumpMotionRing outputs the motion event ring (call on shutdown/error).
// Call from a goroutine or after stopping time-critical code.
func DumpMotionRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[MOTION] === Event Ring Dump ===")

	start := motionRingHead
	for i := uint8(0); i < MotionRingSize; i++ {
		idx := (start + i) % MotionRingSize
		evt := &motionRing[idx]
		if evt.EventType == 0 {
			continue // Empty slot
		}

		var name string
		switch evt.EventType {
		case EvtArm:
			name = "ARM"
		case EvtStep:
			name = "STEP"
		case EvtRampFreeze:
			name = "RAMP_FREEZE"
		case EvtDecel:
			name = "DECEL"
		case EvtDegenerate:
			name = "DEGENERATE!"
		case EvtDone:
			name = "DONE"
		default:
			name = "UNKNOWN"
		}

		debugPrintln("[MOTION] " + name +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[MOTION] === End Dump ===")
}

// ClearMotionRing clears the event buffer.
func ClearMotionRing() {
	for i := range motionRing {
		motionRing[i] = MotionEvent{}
	}
	motionRingHead = 0
}
