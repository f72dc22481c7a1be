package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feckmell/instanceregistry/domain"
)

func noOverride(string) (domain.InstanceStatus, bool) { return "", false }

func TestArbiter_Branch1_NonUpNonOutOfServiceAlwaysBelieved(t *testing.T) {
	reported := domain.InstanceInfo{Status: domain.StatusStarting}
	deps := arbiterDeps{override: noOverride, asg: func(string) bool { return false }}

	got := getOverriddenInstanceStatus(reported, nil, false, deps)
	assert.Equal(t, domain.StatusStarting, got)
}

func TestArbiter_Branch2_OverrideWins(t *testing.T) {
	reported := domain.InstanceInfo{ID: "1", Status: domain.StatusUp}
	deps := arbiterDeps{
		override: func(id string) (domain.InstanceStatus, bool) {
			return domain.StatusOutOfService, id == "1"
		},
		asg: func(string) bool { return true },
	}

	got := getOverriddenInstanceStatus(reported, nil, false, deps)
	assert.Equal(t, domain.StatusOutOfService, got)
}

func TestArbiter_Branch3_ASGDerived(t *testing.T) {
	reported := domain.InstanceInfo{Status: domain.StatusUp, ASGName: "asg-1"}
	deps := arbiterDeps{override: noOverride, asg: func(name string) bool { return name == "asg-1" }}
	assert.Equal(t, domain.StatusUp, getOverriddenInstanceStatus(reported, nil, false, deps))

	deps.asg = func(string) bool { return false }
	assert.Equal(t, domain.StatusOutOfService, getOverriddenInstanceStatus(reported, nil, false, deps))
}

func TestArbiter_Branch4_StickyServerOpinion(t *testing.T) {
	reported := domain.InstanceInfo{Status: domain.StatusUp}
	existing := &Lease{Holder: domain.InstanceInfo{Status: domain.StatusOutOfService}}
	deps := arbiterDeps{override: noOverride, asg: func(string) bool { return true }}

	got := getOverriddenInstanceStatus(reported, existing, false, deps)
	assert.Equal(t, domain.StatusOutOfService, got)
}

func TestArbiter_Branch4_SkippedWhenReplication(t *testing.T) {
	reported := domain.InstanceInfo{Status: domain.StatusUp}
	existing := &Lease{Holder: domain.InstanceInfo{Status: domain.StatusOutOfService}}
	deps := arbiterDeps{override: noOverride, asg: func(string) bool { return true }}

	got := getOverriddenInstanceStatus(reported, existing, true, deps)
	assert.Equal(t, domain.StatusUp, got)
}

func TestArbiter_Branch5_DefaultToReported(t *testing.T) {
	reported := domain.InstanceInfo{Status: domain.StatusUp}
	deps := arbiterDeps{override: noOverride, asg: func(string) bool { return true }}

	got := getOverriddenInstanceStatus(reported, nil, false, deps)
	assert.Equal(t, domain.StatusUp, got)
}
