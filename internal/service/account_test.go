package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignBridge/internal/models"
	"SignBridge/pkg/errors"
)

func TestSignUpAndSignIn(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, newTestCache(t))
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "Marie@Example.fr", "secret123", "Marie Dupont", models.RoleSourd)
	require.NoError(t, err)
	assert.Equal(t, "marie@example.fr", user.Email)
	assert.Equal(t, models.RoleSourd, user.UserRole)

	got, err := svc.SignIn(ctx, "marie@example.fr", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.SignIn(ctx, "marie@example.fr", "wrongpass")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidCredential))

	_, err = svc.SignIn(ctx, "nobody@example.fr", "secret123")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidCredential))
}

func TestSignUpValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, nil)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "secret123", "X", models.RoleEntendant)
	assert.True(t, errors.HasCode(err, errors.CodeConflict))

	_, err = svc.SignUp(ctx, "ok@example.fr", "abc", "X", models.RoleEntendant)
	assert.True(t, errors.HasCode(err, errors.CodeConflict))
}

// A duplicate email must be rejected before any credential is created.
func TestSignUpDuplicateEmailFailsBeforeIdentityCreation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, nil)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "dup@example.fr", "secret123", "Un", models.RoleEntendant)
	require.NoError(t, err)

	var before int64
	db.Model(&models.AuthIdentity{}).Count(&before)

	_, err = svc.SignUp(ctx, "dup@example.fr", "secret123", "Deux", models.RoleEntendant)
	assert.True(t, errors.HasCode(err, errors.CodeConflict))

	var after int64
	db.Model(&models.AuthIdentity{}).Count(&after)
	assert.Equal(t, before, after, "no identity may be created for a duplicate email")
}

// When the profile insert fails the just-created identity is deleted.
func TestSignUpCompensatesIdentityOnProfileFailure(t *testing.T) {
	// only identities get a real table; "users" becomes a read-only view so
	// the duplicate scan succeeds but the profile insert fails
	db := newTestDB(t, &models.AuthIdentity{})
	require.NoError(t, db.Exec(`CREATE VIEW users AS SELECT 'x' AS id, 'x' AS email WHERE 0`).Error)

	svc := NewAccountService(db, nil)
	_, err := svc.SignUp(context.Background(), "saga@example.fr", "secret123", "Saga", models.RoleSourd)
	require.Error(t, err)

	var identities int64
	db.Model(&models.AuthIdentity{}).Count(&identities)
	assert.Zero(t, identities, "identity must be rolled back when the profile insert fails")
}

func TestCheckAndFixUserRoleIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, newTestCache(t))
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "role@example.fr", "secret123", "R", models.RoleEntendant)
	require.NoError(t, err)

	// corrupt the stored role out-of-band
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("user_role", "invité").Error)

	changed, err := svc.CheckAndFixUserRole(ctx, user.ID, models.RoleEntendant)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.CheckAndFixUserRole(ctx, user.ID, models.RoleEntendant)
	require.NoError(t, err)
	assert.False(t, changed, "second call must be a no-op read")

	got, err := svc.GetUserProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEntendant, got.UserRole)
}

func TestGetUserProfileUsesCache(t *testing.T) {
	db := newTestDB(t)
	svc := NewAccountService(db, newTestCache(t))
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "cache@example.fr", "secret123", "C", models.RoleSourd)
	require.NoError(t, err)

	first, err := svc.GetUserProfile(ctx, user.ID)
	require.NoError(t, err)

	// delete behind the cache's back: the cached copy still answers
	require.NoError(t, db.Delete(&models.User{}, "id = ?", user.ID).Error)

	second, err := svc.GetUserProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Email, second.Email)
}
