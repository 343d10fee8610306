package gesture

// Status is the user-facing state of the gesture controller.
type Status int

const (
	StatusWaiting Status = iota
	StatusCooldown
	StatusFistReady
	StatusOpenReady
	StatusNoHand
	StatusContracting
	StatusExpanding
)

var statusText = map[Status]string{
	StatusWaiting:     "🖐️ Status: waiting for gesture",
	StatusCooldown:    "⏳ Cooling down...",
	StatusFistReady:   "👊 Status: fist (ready to contract)",
	StatusOpenReady:   "👐 Status: open palm (ready to expand)",
	StatusNoHand:      "❌ Status: no hand detected",
	StatusContracting: "👊 Triggered: atomic mesh contracting",
	StatusExpanding:   "👐 Triggered: atomic mesh expanding",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return "unknown"
}

// Report derives the resting status from the controller latches.
func Report(cooldown, fisted, openHand, handPresent bool) Status {
	switch {
	case cooldown:
		return StatusCooldown
	case !handPresent:
		return StatusNoHand
	case fisted:
		return StatusFistReady
	case openHand:
		return StatusOpenReady
	default:
		return StatusWaiting
	}
}
