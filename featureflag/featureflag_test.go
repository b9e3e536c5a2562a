package featureflag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureFlag(t *testing.T) {
	flags := New([]string{string(FlagForceRecreate)})

	require.True(t, flags.IsSet(FlagForceRecreate))
	require.False(t, flags.IsSet("bogus"))

	called := false
	flags.IfSet(FlagForceRecreate, func() {
		called = true
	})
	require.True(t, called)

	flags.IfSet("bogus", func() {
		t.Fatal("callback ran for an unset flag")
	})
}
