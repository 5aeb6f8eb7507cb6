package motor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltworks/estimator/motor"
)

func TestParseRevision(t *testing.T) {
	rev, err := motor.ParseRevision("2.7")
	require.NoError(t, err)
	assert.Equal(t, motor.Revision{Major: 2, Minor: 7}, rev)

	for _, bad := range []string{"", "2", "2.", "a.b", "2.7.1", "-1.0"} {
		_, err := motor.ParseRevision(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestRevisionBump(t *testing.T) {
	rev := motor.Revision{Major: 2, Minor: 7}

	assert.Equal(t, "2.8", rev.Bump(motor.ClassMinor).String())
	assert.Equal(t, "3.0", rev.Bump(motor.ClassMajor).String())
	assert.Equal(t, "2.7", rev.Bump(motor.ClassOverwrite).String())
}

func TestRevisionOrdering_NumericNotLexicographic(t *testing.T) {
	// "2.10" must order after "2.9", which string comparison gets wrong.
	v29, err := motor.ParseRevision("2.9")
	require.NoError(t, err)
	v210, err := motor.ParseRevision("2.10")
	require.NoError(t, err)

	assert.True(t, v29.Less(v210))
	assert.False(t, v210.Less(v29))
}
