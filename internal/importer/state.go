package importer

// State is the lifecycle position of one import run.
//
//	Uninitialized -> SchemaEnsured -> Importing -> Committed
//	                                            \-> Aborted
//
// Any state may move to Aborted when a fatal error unwinds the run.
type State int

const (
	Uninitialized State = iota
	SchemaEnsured       // insert statement prepared against the destination
	Importing
	Committed
	Aborted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case SchemaEnsured:
		return "schema_ensured"
	case Importing:
		return "importing"
	case Committed:
		return "committed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON summaries.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
