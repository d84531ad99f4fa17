package menusync

// Phase is a step of the replace state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePurging
	PhaseMaterializing
	PhaseCommitted
	PhaseRolledBack
)

var phaseNames = [...]string{
	PhaseIdle:          "idle",
	PhasePurging:       "purging",
	PhaseMaterializing: "materializing",
	PhaseCommitted:     "committed",
	PhaseRolledBack:    "rolled_back",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}
