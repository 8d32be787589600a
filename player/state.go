package player

// State is the playback state of a single guild
type State int

const (
	Idle State = iota
	Connecting
	Resolving
	Playing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Resolving:
		return "resolving"
	case Playing:
		return "playing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
