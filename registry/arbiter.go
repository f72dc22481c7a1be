package registry

import "github.com/feckmell/instanceregistry/domain"

// arbiterDeps bundles the two oracles the arbiter needs besides its direct
// arguments, so it stays a pure function of its inputs.
type arbiterDeps struct {
	override func(id string) (domain.InstanceStatus, bool)
	asg      func(asgName string) bool
}

// getOverriddenInstanceStatus implements the five-branch status precedence
// an instance's effective status is derived under. It is pure and
// side-effect-free: all state it needs comes in through reported,
// existingLease and deps.
func getOverriddenInstanceStatus(
	reported domain.InstanceInfo,
	existingLease *Lease,
	isReplication bool,
	deps arbiterDeps,
) domain.InstanceStatus {
	// 1. STARTING and DOWN are always believed.
	if reported.Status != domain.StatusUp && reported.Status != domain.StatusOutOfService {
		return reported.Status
	}

	// 2. An operator override wins over anything reported.
	if override, ok := deps.override(reported.ID); ok {
		return override
	}

	// 3. ASG-derived status, if the instance carries an ASG name.
	if reported.ASGName != "" {
		if deps.asg(reported.ASGName) {
			return domain.StatusUp
		}
		return domain.StatusOutOfService
	}

	// 4. Non-replicated requests: the server sticks to its own existing
	// opinion when that opinion was UP or OUT_OF_SERVICE.
	if !isReplication && existingLease != nil {
		existingStatus := existingLease.Holder.Status
		if existingStatus == domain.StatusUp || existingStatus == domain.StatusOutOfService {
			return existingStatus
		}
	}

	// 5. Default: trust what was reported.
	return reported.Status
}
