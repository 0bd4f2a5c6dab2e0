package pipeline

type State int

const (
	StateIdle State = iota
	StateLocating
	StateListing
	StateAssembling
	StateGenerating
	StateWriting
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:       "idle",
	StateLocating:   "locating",
	StateListing:    "listing",
	StateAssembling: "assembling",
	StateGenerating: "generating",
	StateWriting:    "writing",
	StateDone:       "done",
	StateFailed:     "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindInvalidURL ErrorKind = "invalid_url"
	KindRepoAccess ErrorKind = "repo_access"
	KindRepoWrite  ErrorKind = "repo_write"
	KindGeneration ErrorKind = "generation"
	KindDecode     ErrorKind = "decode"
	KindUnknown    ErrorKind = "unknown"
)
