package publishing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wepublish/wepublish-api/internal/testutil"
	"github.com/wepublish/wepublish-api/pkg/publishing"
)

func TestPreviewSigner(t *testing.T) {
	clock := testutil.FixedClock()
	signer, err := publishing.NewPreviewSigner([]byte("secret"), clock)
	require.NoError(t, err)
	id := uuid.New()

	token, err := signer.Sign(publishing.KindArticle, id, time.Hour)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		got, err := signer.Verify(publishing.KindArticle, token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("other kind rejected", func(t *testing.T) {
		_, err := signer.Verify(publishing.KindPage, token)
		assert.ErrorIs(t, err, publishing.ErrInvalidPreviewToken)
	})

	t.Run("other secret rejected", func(t *testing.T) {
		other, err := publishing.NewPreviewSigner([]byte("other"), clock)
		require.NoError(t, err)
		_, err = other.Verify(publishing.KindArticle, token)
		assert.ErrorIs(t, err, publishing.ErrInvalidPreviewToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := signer.Verify(publishing.KindArticle, "not-a-token")
		assert.ErrorIs(t, err, publishing.ErrInvalidPreviewToken)
	})

	t.Run("expired", func(t *testing.T) {
		expiring, err := publishing.NewPreviewSigner([]byte("secret"), testutil.FixedClock())
		require.NoError(t, err)
		short, err := expiring.Sign(publishing.KindArticle, id, time.Minute)
		require.NoError(t, err)

		later := testutil.FixedClock()
		later.Advance(2 * time.Minute)
		verifier, err := publishing.NewPreviewSigner([]byte("secret"), later)
		require.NoError(t, err)
		_, err = verifier.Verify(publishing.KindArticle, short)
		assert.ErrorIs(t, err, publishing.ErrInvalidPreviewToken)
	})

	t.Run("secret required", func(t *testing.T) {
		_, err := publishing.NewPreviewSigner(nil, clock)
		assert.Error(t, err)
	})
}

func TestAuthorise(t *testing.T) {
	assert.NoError(t, publishing.Authorise(publishing.PermissionDeleteArticle, []publishing.Role{publishing.RoleAdmin}))
	assert.ErrorIs(t, publishing.Authorise(publishing.PermissionDeleteArticle, []publishing.Role{publishing.RoleEditor}), publishing.ErrNotAuthorised)
	assert.ErrorIs(t, publishing.Authorise(publishing.PermissionGetPage, nil), publishing.ErrNotAuthorised)

	roles := publishing.ResolveRoles([]string{"peer", "unknown"}, publishing.DefaultRoles())
	assert.Equal(t, []publishing.Role{publishing.RolePeer}, roles)
}
