package device

import (
	"bytes"
	"io"
	"testing"

	"rampgen/core"
	"rampgen/motion"
	"rampgen/protocol"
)

// pipePort is an in-memory transport: the test writes command bytes
// into in and reads device output from out.
type pipePort struct {
	in  bytes.Buffer
	out bytes.Buffer
}

func (p *pipePort) Read(b []byte) (int, error) {
	if p.in.Len() == 0 {
		return 0, io.EOF
	}
	return p.in.Read(b)
}

func (p *pipePort) Write(b []byte) (int, error) {
	return p.out.Write(b)
}

type stubBackend struct {
	steps int
	dir   bool
}

func (b *stubBackend) Init(stepPin, dirPin uint8, invertStep, invertDir bool) error {
	return nil
}
func (b *stubBackend) Step()                 { b.steps++ }
func (b *stubBackend) SetDirection(dir bool) { b.dir = dir }
func (b *stubBackend) Stop()                 {}
func (b *stubBackend) Name() string          { return "stub" }

func newTestDevice(t *testing.T) (*Device, *pipePort, *stubBackend) {
	t.Helper()
	core.ResetTimers()
	core.SetTime(0)
	motion.InitMotionCommands()

	backend := &stubBackend{}
	motion.SetBackendFactory(func() core.StepBackend { return backend })

	port := &pipePort{}
	return New(port), port, backend
}

// commandFrame builds a host frame carrying one command by name.
func commandFrame(t *testing.T, seq uint8, name string, args ...int32) []byte {
	t.Helper()
	id, ok := core.LookupCommandID(name)
	if !ok {
		t.Fatalf("command %q not registered", name)
	}
	payload := protocol.AppendVLQUint(nil, uint32(id))
	for _, a := range args {
		payload = protocol.AppendVLQInt(payload, a)
	}
	msg, err := protocol.EncodeFrame(seq, payload)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	return msg
}

// drainFrames decodes every complete frame the device has written.
func drainFrames(t *testing.T, port *pipePort) []protocol.Frame {
	t.Helper()
	dec := protocol.NewDecoder()
	dec.Write(port.out.Bytes())
	port.out.Reset()

	var frames []protocol.Frame
	for {
		f, ok := dec.Next()
		if !ok {
			return frames
		}
		frames = append(frames, f)
	}
}

// pumpMotor polls the device with the clock advanced to each timer
// wake until the motor reports done.
func pumpMotor(t *testing.T, d *Device, m *motion.Motor) {
	t.Helper()
	for i := 0; i < 1000000; i++ {
		if m.Done() {
			return
		}
		wake, ok := core.NextWake()
		if !ok {
			t.Fatalf("no timer armed with move in flight")
		}
		core.SetTime(wake)
		if err := d.Poll(); err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
	}
	t.Fatalf("move did not complete")
}

func TestDeviceCommandRoundTrip(t *testing.T) {
	d, port, backend := newTestDevice(t)

	seq := uint8(protocol.DestBits)
	port.in.Write(commandFrame(t, seq, "config_stepper", 1, 2, 3, 0, 0))
	if err := d.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}

	frames := drainFrames(t, port)
	if len(frames) != 1 {
		t.Fatalf("Expected one ack frame, got %d", len(frames))
	}
	seq = protocol.NextSeq(seq)
	if frames[0].Seq != seq || len(frames[0].Payload) != 0 {
		t.Errorf("Bad ack: seq=%#x payload=%d bytes", frames[0].Seq, len(frames[0].Payload))
	}

	motor := motion.GetMotor(1)
	if motor == nil {
		t.Fatalf("config_stepper did not create the motor")
	}

	port.in.Write(commandFrame(t, seq, "move", 1, 8))
	if err := d.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	seq = protocol.NextSeq(seq)
	pumpMotor(t, d, motor)

	if backend.steps != 8 {
		t.Errorf("Expected 8 steps, got %d", backend.steps)
	}

	port.out.Reset()
	port.in.Write(commandFrame(t, seq, "query_stepper", 1))
	if err := d.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}

	stateID, _ := core.LookupCommandID("stepper_state")
	var response []byte
	for _, f := range drainFrames(t, port) {
		if len(f.Payload) > 0 {
			response = f.Payload
		}
	}
	if response == nil {
		t.Fatalf("query_stepper produced no response frame")
	}

	data := response
	id, err := protocol.DecodeVLQUint(&data)
	if err != nil || uint16(id) != stateID {
		t.Fatalf("Response id: got %d (err %v), want %d", id, err, stateID)
	}
	var args []int32
	for len(data) > 0 {
		v, err := protocol.DecodeVLQInt(&data)
		if err != nil {
			t.Fatalf("Response decode failed: %v", err)
		}
		args = append(args, v)
	}
	want := []int32{1, 8, 8, 1} // oid, pos, taken, done
	if len(args) != len(want) {
		t.Fatalf("Response args: got %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("Response arg %d: got %d, want %d", i, args[i], want[i])
		}
	}
}

func TestDeviceDropsOutOfSequence(t *testing.T) {
	d, port, backend := newTestDevice(t)

	seq := uint8(protocol.DestBits)
	port.in.Write(commandFrame(t, seq, "config_stepper", 2, 4, 5, 0, 0))
	if err := d.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	seq = protocol.NextSeq(seq)
	drainFrames(t, port)

	// A stale sequence number must not reach the dispatcher, but it
	// still gets an ack naming the expected sequence.
	stale := protocol.NextSeq(seq)
	port.in.Write(commandFrame(t, stale, "move", 2, 100))
	if err := d.Poll(); err != nil {
		t.Fatalf("Poll failed: %v", err)
	}

	frames := drainFrames(t, port)
	if len(frames) != 1 {
		t.Fatalf("Expected one ack frame, got %d", len(frames))
	}
	if frames[0].Seq != seq {
		t.Errorf("Ack seq %#x, want expected seq %#x", frames[0].Seq, seq)
	}

	if !motion.GetMotor(2).Done() || backend.steps != 0 {
		t.Errorf("Out-of-sequence move was dispatched (steps=%d)", backend.steps)
	}
}

func TestPollToleratesIdlePort(t *testing.T) {
	d, _, _ := newTestDevice(t)

	// An empty transport read (EOF, no data) is a normal idle poll.
	if err := d.Poll(); err != nil {
		t.Errorf("Idle Poll returned %v", err)
	}
}
