package cmdutil

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/supermal/mallpass/pkg/sdk"
)

func TestFreshness(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		source    sdk.Source
		fetchedAt time.Time
		want      string
	}{
		{"fresh network read", sdk.SourceNetwork, now.Add(-2 * time.Second), ""},
		{"cached network read", sdk.SourceNetwork, now.Add(-3 * time.Minute), "Cached 3m0s ago"},
		{"seed fallback", sdk.SourceFallback, now, "Backend unavailable, showing offline data"},
		{"stale fallback", sdk.SourceFallback, now.Add(-90 * time.Second), "Backend unavailable, showing data saved 1m30s ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Freshness(tt.source, tt.fetchedAt, now))
		})
	}
}

func TestExplainGate(t *testing.T) {
	teaser := fmt.Errorf("points: %w", &sdk.AccessError{Capability: sdk.CapViewProfile, Decision: sdk.Teaser})
	assert.NoError(t, ExplainGate(teaser))

	deny := &sdk.AccessError{Capability: sdk.CapRedeemReward, Decision: sdk.Deny}
	assert.Equal(t, error(deny), ExplainGate(deny))

	other := errors.New("boom")
	assert.Equal(t, other, ExplainGate(other))
	assert.NoError(t, ExplainGate(nil))
}

func TestCapabilityLabel(t *testing.T) {
	for _, c := range sdk.Capabilities() {
		assert.NotEqual(t, string(c), CapabilityLabel(c))
	}
	assert.Equal(t, "teleport", CapabilityLabel("teleport"))
}
