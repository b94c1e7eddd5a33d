package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveRingCount(t *testing.T) {
	var nilProfile *BusinessProfile
	assert.Equal(t, 4, nilProfile.EffectiveRingCount())

	assert.Equal(t, 4, (&BusinessProfile{}).EffectiveRingCount())
	assert.Equal(t, 4, (&BusinessProfile{RingCount: -1}).EffectiveRingCount())
	assert.Equal(t, 3, (&BusinessProfile{RingCount: 3}).EffectiveRingCount())
}

func TestRingTimeoutSeconds(t *testing.T) {
	assert.Equal(t, 20, (&BusinessProfile{}).RingTimeoutSeconds())
	assert.Equal(t, 15, (&BusinessProfile{RingCount: 3}).RingTimeoutSeconds())
	assert.Equal(t, 40, (&BusinessProfile{RingCount: 8}).RingTimeoutSeconds())
}

func TestBusinessDataValueOmitsEmpty(t *testing.T) {
	value, err := BusinessData{}.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = BusinessData{BusinessName: "Bright Smiles Dental"}.Value()
	require.NoError(t, err)
	require.NotNil(t, value)

	var scanned BusinessData
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, "Bright Smiles Dental", scanned.BusinessName)
}
