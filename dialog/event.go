package dialog

// EventType identifies the kind of event emitted during a dialog run.
type EventType string

const (
	// EventAgentTurn carries one completed agent turn. Turns are delivered
	// in chronological order, one event per turn.
	EventAgentTurn EventType = "agent_turn"

	// EventDialogComplete is the terminal event of a run that finished
	// naturally or honored a stop request. Emitted exactly once.
	EventDialogComplete EventType = "dialog_complete"

	// EventDialogError is the terminal event of a failed run. Emitted at
	// most once, mutually exclusive with EventDialogComplete.
	EventDialogError EventType = "dialog_error"
)

// Event is a one-way notification from the run loop to the caller. There is
// no return channel back into the loop.
type Event struct {
	Type EventType

	// AgentIndex and Text are set for EventAgentTurn.
	AgentIndex int
	Text       string

	// Message is set for EventDialogError.
	Message string
}
