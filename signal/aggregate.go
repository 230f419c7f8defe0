package signal

import (
	"github.com/avren/wiremesh/mesh"
	"github.com/avren/wiremesh/network"
)

// aggregate computes the component's external input: the maximum power
// any grid neighbor of any member offers toward that member.
//
// Skipped neighbors:
//   - members of this component and any other anchor (internal wiring
//     must not feed itself);
//   - conduit cells, the peer signal medium, to prevent feedback loops
//     between the two media.
//
// The environment answers "what do you offer coming from direction D",
// so each probe passes the geometric inverse of the probed direction.
// Early exit at MaxPower is an optimization only; correctness does not
// depend on it.
func (e *Engine) aggregate(comp *network.Component) mesh.Power {
	var maxInput mesh.Power
	for _, member := range comp.Members() {
		for _, nbr := range e.env.Neighbors(member) {
			if comp.Contains(nbr.Pos) || e.mesh.HasAnchor(nbr.Pos) {
				continue
			}
			if e.env.IsConduit(nbr.Pos) {
				continue
			}
			if p := e.env.PowerFrom(nbr.Pos, nbr.Dir.Opposite()); p > maxInput {
				maxInput = p
				if maxInput >= mesh.MaxPower {
					return mesh.MaxPower
				}
			}
		}
	}
	return maxInput
}
