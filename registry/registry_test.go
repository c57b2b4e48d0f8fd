package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conductor-ci/conductor/types"
)

type noopUnit struct{}

func (noopUnit) Setup(ctx context.Context) error    { return nil }
func (noopUnit) Teardown(ctx context.Context) error { return nil }
func (noopUnit) Tests() []types.TestCase            { return nil }

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("SpriteBatchTest", func() types.TestUnit { return noopUnit{} }))

	factory, ok := r.Resolve("SpriteBatchTest")
	require.True(t, ok)
	assert.NotNil(t, factory())

	_, ok = r.Resolve("MissingTest")
	assert.False(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	err := r.Register("", func() types.TestUnit { return noopUnit{} })
	require.Error(t, err)

	err = r.Register("SpriteBatchTest", nil)
	require.Error(t, err)

	require.NoError(t, r.Register("SpriteBatchTest", func() types.TestUnit { return noopUnit{} }))
	err = r.Register("SpriteBatchTest", func() types.TestUnit { return noopUnit{} })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestClassNamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		require.NoError(t, r.Register(name, func() types.TestUnit { return noopUnit{} }))
	}
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, r.ClassNames())
}

func TestDefaultRegistryPanicsOnDuplicate(t *testing.T) {
	Register("registry_test.Unique", func() types.TestUnit { return noopUnit{} })
	assert.Panics(t, func() {
		Register("registry_test.Unique", func() types.TestUnit { return noopUnit{} })
	})
}
