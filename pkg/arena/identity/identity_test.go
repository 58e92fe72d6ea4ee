package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/slotarena/pkg/arena/identity"
)

func Test_New_Mints_Distinct_Tokens_When_Called_Repeatedly(t *testing.T) {
	t.Parallel()

	a := identity.New()
	b := identity.New()

	assert.NotEqual(t, a.Token(), b.Token(), "identities must not share tokens")
	assert.NotZero(t, a.Token())
	assert.True(t, a.Owns(a.Token()))
	assert.False(t, a.Owns(b.Token()), "identity must not own a foreign token")
	assert.False(t, a.Owns(0), "identity must not own the zero token")
}

func Test_Anonymous_Owns_Nothing(t *testing.T) {
	t.Parallel()

	var anon identity.Anonymous

	assert.Zero(t, anon.Token())
	assert.False(t, anon.Owns(0))
	assert.False(t, anon.Owns(identity.New().Token()))
}
