package render

// State is a stage of one orchestrated run.
type State int

const (
	Idle State = iota
	Validating
	Rendering
	Succeeded
	Failed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Rendering:
		return "rendering"
	case Succeeded:
		return "completed(success)"
	case Failed:
		return "completed(failure)"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}
