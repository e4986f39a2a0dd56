package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"fitcomp/internal/apperr"
	"fitcomp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	cfg := setupTestDB(t)
	svc := NewUserService(cfg)
	auth := NewAuthService(cfg)

	admin := createTestUser(t, "admin@test.local", models.RoleAdministrator, true)
	staff := createTestUser(t, "staff@test.local", models.RoleStaff, true)

	user, err := svc.CreateUser(CreateUserInput{
		Email:     "  New.Member@Test.local ",
		FirstName: "New",
		LastName:  "Member",
		Role:      models.RoleMember,
		Password:  "pw123456",
	}, actorFor(admin))
	require.NoError(t, err)
	assert.Equal(t, "new.member@test.local", user.Email)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.PasswordHash)

	logged, err := auth.Authenticate("new.member@test.local", "pw123456", "")
	require.NoError(t, err)
	require.NotNil(t, logged)

	logs := auditRows(t, models.ActionCreate, models.ResourceUser)
	require.Len(t, logs, 1)
	assert.Equal(t, admin.ID, logs[0].UserID)
	assert.Equal(t, user.ID, *logs[0].ResourceID)

	_, err = svc.CreateUser(CreateUserInput{Email: "new.member@test.local", Role: models.RoleMember}, actorFor(admin))
	assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)

	_, err = svc.CreateUser(CreateUserInput{Email: "x@test.local", Role: "owner"}, actorFor(admin))
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = svc.CreateUser(CreateUserInput{Email: "y@test.local", Role: models.RoleMember}, actorFor(staff))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateUser(t *testing.T) {
	cfg := setupTestDB(t)
	svc := NewUserService(cfg)

	admin := createTestUser(t, "admin@test.local", models.RoleAdministrator, true)
	member := createTestUser(t, "member@test.local", models.RoleMember, true)
	peer := createTestUser(t, "peer@test.local", models.RoleMember, true)

	t.Run("self edits profile", func(t *testing.T) {
		name := "Renamed"
		user, err := svc.UpdateUser(member.ID, UpdateUserInput{FirstName: &name}, actorFor(member))
		require.NoError(t, err)
		assert.Equal(t, "Renamed", user.FirstName)

		logs := auditRows(t, models.ActionUpdate, models.ResourceUser)
		require.Len(t, logs, 1)
		assert.Equal(t, member.ID, logs[0].UserID)
	})

	t.Run("self cannot promote", func(t *testing.T) {
		role := models.RoleAdministrator
		_, err := svc.UpdateUser(member.ID, UpdateUserInput{Role: &role}, actorFor(member))
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("member cannot edit peer", func(t *testing.T) {
		name := "Hacked"
		_, err := svc.UpdateUser(peer.ID, UpdateUserInput{FirstName: &name}, actorFor(member))
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("email collision", func(t *testing.T) {
		email := "PEER@test.local"
		_, err := svc.UpdateUser(member.ID, UpdateUserInput{Email: &email}, actorFor(admin))
		assert.ErrorIs(t, err, apperr.ErrDuplicateEmail)
	})

	t.Run("admin deactivates", func(t *testing.T) {
		off := false
		user, err := svc.UpdateUser(peer.ID, UpdateUserInput{IsActive: &off}, actorFor(admin))
		require.NoError(t, err)
		assert.False(t, user.IsActive)

		logs := auditRows(t, models.ActionDeactivate, models.ResourceUser)
		require.Len(t, logs, 1)
		assert.Equal(t, peer.ID, *logs[0].ResourceID)
		assert.Equal(t, "Deactivated user: peer@test.local", *logs[0].Details)

		stored, err := svc.GetUser(peer.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
	})

	t.Run("missing user", func(t *testing.T) {
		name := "Ghost"
		_, err := svc.UpdateUser(9999, UpdateUserInput{FirstName: &name}, actorFor(admin))
		require.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, fmt.Sprintf("user with id %d not found", 9999), err.Error())
	})
}

func TestGetUsersIncludesInactive(t *testing.T) {
	cfg := setupTestDB(t)
	svc := NewUserService(cfg)

	createTestUser(t, "a@test.local", models.RoleMember, true)
	createTestUser(t, "b@test.local", models.RoleMember, false)

	users, err := svc.GetUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAuditList(t *testing.T) {
	setupTestDB(t)
	audit := NewAuditService()

	for i := 1; i <= 5; i++ {
		require.NoError(t, audit.Record(models.DB, AuditEntry{
			UserID:       1,
			Action:       models.ActionUpdate,
			ResourceType: models.ResourceCompetition,
			ResourceID:   idPtr(uint(i)),
			Details:      fmt.Sprintf("row %d", i),
		}))
	}

	page, err := audit.List(2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "row 5", *page[0].Details)
	assert.Equal(t, "row 4", *page[1].Details)
	assert.Nil(t, page[0].IPAddress)

	next, err := audit.List(2, 2)
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, "row 3", *next[0].Details)

	all, err := audit.List(0, -1)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestNullableUnmarshal(t *testing.T) {
	var in struct {
		A Nullable[string] `json:"a"`
		B Nullable[string] `json:"b"`
		C Nullable[uint]   `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":null}`), &in))

	assert.True(t, in.A.Set)
	require.NotNil(t, in.A.Value)
	assert.Equal(t, "x", *in.A.Value)
	assert.True(t, in.B.Set)
	assert.Nil(t, in.B.Value)
	assert.False(t, in.C.Set)
}
