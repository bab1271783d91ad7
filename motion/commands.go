package motion

import (
	"errors"

	"rampgen/core"
	"rampgen/protocol"
)

// Responder emits a response frame back to the host. Wired by the
// device loop at startup; a no-op until then so handlers stay safe in
// tests and simulators.
type Responder func(name string, args ...int32)

var responder Responder = func(string, ...int32) {}

// SetResponder installs the response sink.
func SetResponder(r Responder) {
	responder = r
}

// Backend factory, set by target-specific code before commands run.
var backendFactory func() core.StepBackend

// SetBackendFactory registers the factory used by config_stepper.
func SetBackendFactory(f func() core.StepBackend) {
	backendFactory = f
}

// Configured motors by object ID.
var motors = make(map[uint8]*Motor)

// GetMotor returns a configured motor, or nil.
func GetMotor(oid uint8) *Motor {
	return motors[oid]
}

// RegisterMotor installs an externally constructed motor (simulators,
// target mains that bypass config_stepper).
func RegisterMotor(oid uint8, m *Motor) {
	motors[oid] = m
}

// InitMotionCommands registers the motion command surface.
func InitMotionCommands() {
	core.RegisterCommand("config_stepper", "oid=%c step_pin=%u dir_pin=%u invert_step=%c invert_dir=%c", handleConfigStepper)
	core.RegisterCommand("set_ramp", "oid=%c start_delay=%u cruise_delay=%u", handleSetRamp)
	core.RegisterCommand("move", "oid=%c delta=%i", handleMove)
	core.RegisterCommand("move_to", "oid=%c pos=%i", handleMoveTo)
	core.RegisterCommand("query_stepper", "oid=%c", handleQueryStepper)
	core.RegisterResponse("stepper_state", "oid=%c pos=%i taken=%u done=%c")
}

func handleConfigStepper(data *[]byte) error {
	oid, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	stepPin, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	dirPin, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	invertStep, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	invertDir, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}

	if backendFactory == nil {
		return errors.New("motion: no step backend factory registered")
	}
	backend := backendFactory()
	if backend == nil {
		return errors.New("motion: no step backend available")
	}
	if err := backend.Init(uint8(stepPin), uint8(dirPin), invertStep != 0, invertDir != 0); err != nil {
		return err
	}

	motor, err := NewMotor(backend, DefaultStartDelay, DefaultCruiseDelay)
	if err != nil {
		return err
	}
	motors[uint8(oid)] = motor
	return nil
}

func handleSetRamp(data *[]byte) error {
	oid, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	startDelay, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	cruiseDelay, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}

	motor := motors[uint8(oid)]
	if motor == nil {
		// Unconfigured OID; drop the command like any other object type.
		return nil
	}
	if err := motor.SetStartDelay(float64(startDelay)); err != nil {
		return err
	}
	return motor.SetCruiseDelay(float64(cruiseDelay))
}

func handleMove(data *[]byte) error {
	oid, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	delta, err := protocol.DecodeVLQInt(data)
	if err != nil {
		return err
	}

	motor := motors[uint8(oid)]
	if motor == nil {
		return nil
	}
	motor.Move(int64(delta))
	return nil
}

func handleMoveTo(data *[]byte) error {
	oid, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	pos, err := protocol.DecodeVLQInt(data)
	if err != nil {
		return err
	}

	motor := motors[uint8(oid)]
	if motor == nil {
		return nil
	}
	// The device loop cannot block; the host polls query_stepper for
	// completion.
	motor.StartMoveTo(int64(pos))
	return nil
}

func handleQueryStepper(data *[]byte) error {
	oid, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}

	motor := motors[uint8(oid)]
	if motor == nil {
		return nil
	}

	st := motor.State()
	done := int32(0)
	if st.MovementDone {
		done = 1
	}
	responder("stepper_state", int32(oid), int32(st.StepPosition), int32(st.StepsTaken), done)
	return nil
}
