package gesture

import "time"

// Command is an edge-triggered instruction to the particle field.
type Command int

const (
	CommandNone Command = iota
	CommandContract
	CommandExpand
)

func (c Command) String() string {
	switch c {
	case CommandContract:
		return "contract"
	case CommandExpand:
		return "expand"
	default:
		return "none"
	}
}

// State holds the controller latches. Fisted and OpenHand are rising-edge
// latches; Cooldown gates every command until CooldownUntil.
type State struct {
	Fisted        bool
	OpenHand      bool
	Cooldown      bool
	Contracted    bool
	CooldownUntil time.Time
}

// Machine debounces classified frames into Commands. It is not safe for
// concurrent use; callers serialize Observe, Request and Tick.
type Machine struct {
	state       State
	cooldown    time.Duration
	handPresent bool
	status      Status
}

// NewMachine creates an expanded, idle Machine.
func NewMachine(cooldown time.Duration) *Machine {
	return &Machine{
		cooldown: cooldown,
		status:   StatusWaiting,
	}
}

// Observe feeds one classified frame. It returns the command fired by this
// frame, if any. A fist wins over an open palm in the same frame.
func (m *Machine) Observe(sig Signal, now time.Time) Command {
	m.Tick(now)

	if !sig.Present {
		m.state.Fisted = false
		m.state.OpenHand = false
		m.handPresent = false
		m.status = Report(m.state.Cooldown, false, false, false)
		return CommandNone
	}
	m.handPresent = true

	cmd := CommandNone

	if sig.Fist {
		if !m.state.Fisted {
			m.state.Fisted = true
			cmd = m.Request(true, now)
		}
	} else {
		m.state.Fisted = false
	}

	if sig.Open && !sig.Fist {
		if !m.state.OpenHand {
			m.state.OpenHand = true
			if c := m.Request(false, now); c != CommandNone {
				cmd = c
			}
		}
	} else {
		m.state.OpenHand = false
	}

	if !m.state.Cooldown {
		m.status = Report(false, m.state.Fisted, m.state.OpenHand, true)
	}
	return cmd
}

// Request asks for the contracted (true) or expanded (false) layout. It is a
// no-op during cooldown or when the mesh is already in the requested layout.
func (m *Machine) Request(contract bool, now time.Time) Command {
	if m.state.Cooldown || m.state.Contracted == contract {
		return CommandNone
	}

	m.state.Cooldown = true
	m.state.CooldownUntil = now.Add(m.cooldown)
	m.state.Contracted = contract

	if contract {
		m.status = StatusContracting
		return CommandContract
	}
	m.status = StatusExpanding
	return CommandExpand
}

// Tick releases the cooldown once it has expired and re-derives the status
// from the current latches. It reports whether a release happened.
func (m *Machine) Tick(now time.Time) bool {
	if !m.state.Cooldown || now.Before(m.state.CooldownUntil) {
		return false
	}
	m.state.Cooldown = false
	m.state.CooldownUntil = time.Time{}
	m.status = Report(false, m.state.Fisted, m.state.OpenHand, m.handPresent)
	return true
}

// Reset returns the machine to its initial expanded, idle state.
func (m *Machine) Reset() {
	m.state = State{}
	m.handPresent = false
	m.status = StatusWaiting
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Status() Status {
	return m.status
}

// HandPresent reports whether the last observed frame carried a hand.
func (m *Machine) HandPresent() bool {
	return m.handPresent
}
