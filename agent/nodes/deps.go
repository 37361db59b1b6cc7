package orchestratornode

import (
	"time"

	specialistx "github.com/tanpawarit/career-mentor-ai/agent/agents/specialist"
	contractx "github.com/tanpawarit/career-mentor-ai/agent/contract"
	statex "github.com/tanpawarit/career-mentor-ai/agent/state"
)

// Deps are the collaborators the turn nodes share. All of them are safe for
// concurrent use. A nil Router leaves delegation to the entry specialist's
// handoff signals.
type Deps struct {
	Store        statex.Store
	Set          *specialistx.Set
	Tools        contractx.ToolInvoker
	Backend      contractx.Backend
	Router       contractx.Router
	Observer     contractx.TurnObserver
	MaxToolCalls int

	// TurnTimeout bounds the generation part of a turn. Zero disables it.
	TurnTimeout time.Duration
}

func (d Deps) observer() contractx.TurnObserver {
	if d.Observer == nil {
		return contractx.NopObserver{}
	}
	return d.Observer
}
