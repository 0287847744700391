package container

// SmallBoolean is a single-byte boolean with a fixed wire width, used
// wherever a replicated, zero-copy layout matters (e.g. WitnessProof.Witness)
// even though this deployment doesn't require Pod/Zeroable byte-for-byte
// layout the way the on-chain variant does. Keeping the type distinct from
// Go's native bool preserves that one-byte-per-field contract if this state
// is ever serialized for cross-language replication.
type SmallBoolean uint8

const (
	SmallFalse SmallBoolean = 0
	SmallTrue  SmallBoolean = 1
)

// NewSmallBoolean converts a native bool to a SmallBoolean.
func NewSmallBoolean(b bool) SmallBoolean {
	if b {
		return SmallTrue
	}
	return SmallFalse
}

// Bool converts back to a native bool. Any nonzero value is true, matching
// the lenient decode behavior of the original Pod layout.
func (s SmallBoolean) Bool() bool {
	return s != SmallFalse
}

func (s SmallBoolean) String() string {
	if s.Bool() {
		return "true"
	}
	return "false"
}
