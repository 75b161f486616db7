package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyVisible(t *testing.T) {
	policy := Policy{HideThreshold: 5}

	assert.True(t, policy.Visible(0, false))
	assert.True(t, policy.Visible(4, false))
	assert.False(t, policy.Visible(5, false))
	assert.False(t, policy.Visible(100, false))

	// Immunity overrides any count
	assert.True(t, policy.Visible(5, true))
	assert.True(t, policy.Visible(100, true))
}

func TestPolicyThresholdIsConfigurable(t *testing.T) {
	// The product shipped with 3 before 5; nothing may assume either
	low := Policy{HideThreshold: 3}
	assert.False(t, low.Visible(3, false))
	assert.True(t, low.Visible(2, false))
}
