package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotarena/internal/catalog"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

func Test_New_Builds_Every_Listed_Engine(t *testing.T) {
	t.Parallel()

	for _, name := range catalog.Engines() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			a, err := catalog.New[string, version.Tiny](name, identity.New())
			require.NoError(t, err)

			k := a.Insert("x")
			assert.Equal(t, "x", a.MustGet(k))
		})
	}
}

func Test_New_Returns_Error_When_Engine_Unknown(t *testing.T) {
	t.Parallel()

	_, err := catalog.New[int, version.Default]("btree", nil)
	require.ErrorIs(t, err, catalog.ErrUnknownEngine)

	require.ErrorIs(t, catalog.ValidateVersion("huge"), catalog.ErrUnknownVersion)
	require.NoError(t, catalog.ValidateVersion(catalog.Unversioned))
}
