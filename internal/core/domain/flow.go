package domain

// Flow identifies how interactive authentication is performed.
type Flow string

const (
	// FlowPopup opens the system browser and waits for the result on a
	// loopback listener. The token is returned in-process.
	FlowPopup Flow = "popup"
	// FlowRedirect navigates the browser away and returns immediately.
	// The result is only available after CompleteRedirect on a later call.
	FlowRedirect Flow = "redirect"
	// FlowNone never prompts. Acquisition that needs the user fails with
	// ErrInteractionRequired. It cannot be selected in the settings file.
	FlowNone Flow = "none"
)

// ParseFlow converts a string to a Flow.
// Returns ErrInvalidInput for unknown values.
func ParseFlow(s string) (Flow, error) {
	switch Flow(s) {
	case FlowPopup, FlowRedirect:
		return Flow(s), nil
	case "":
		return FlowPopup, nil
	default:
		return "", ErrInvalidInput
	}
}

// FlowFor returns the redirect flow when preferRedirect is set and the popup
// flow otherwise.
func FlowFor(preferRedirect bool) Flow {
	if preferRedirect {
		return FlowRedirect
	}
	return FlowPopup
}
