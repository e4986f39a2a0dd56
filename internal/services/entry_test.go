package services

import (
	"fmt"
	"testing"

	"fitcomp/internal/apperr"
	"fitcomp/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateEntryStaffOnly(t *testing.T) {
	setupTestDB(t)
	svc := NewEntryService()

	staff := createTestUser(t, "staff@test.local", models.RoleStaff, true)
	member := createTestUser(t, "member@test.local", models.RoleMember, true)
	comp := createTestCompetition(t, staff, models.EntryStaffOnly)

	entry, err := svc.CreateEntry(CreateEntryInput{
		CompetitionID: comp.ID,
		UserID:        member.ID,
		Value:         decimal.NewFromInt(50),
		Unit:          strPtr("reps"),
	}, actorFor(staff))
	require.NoError(t, err)
	assert.True(t, entry.Value.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, staff.ID, entry.EnteredBy)
	assert.Equal(t, member.ID, entry.UserID)

	logs := auditRows(t, models.ActionCreate, models.ResourceCompetitionEntry)
	require.Len(t, logs, 1)
	assert.Equal(t, staff.ID, logs[0].UserID)
	assert.Equal(t, entry.ID, *logs[0].ResourceID)

	_, err = svc.CreateEntry(CreateEntryInput{
		CompetitionID: comp.ID,
		UserID:        member.ID,
		Value:         decimal.NewFromInt(50),
	}, actorFor(member))
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "members cannot enter data for staff-only competitions", err.Error())
	assert.Len(t, auditRows(t, models.ActionCreate, models.ResourceCompetitionEntry), 1)
}

func TestCreateEntryUserEntry(t *testing.T) {
	setupTestDB(t)
	svc := NewEntryService()

	staff := createTestUser(t, "staff@test.local", models.RoleStaff, true)
	member := createTestUser(t, "member@test.local", models.RoleMember, true)
	peer := createTestUser(t, "peer@test.local", models.RoleMember, true)
	comp := createTestCompetition(t, staff, models.EntryUserEntry)

	_, err := svc.CreateEntry(CreateEntryInput{
		CompetitionID: comp.ID,
		UserID:        peer.ID,
		Value:         decimal.NewFromInt(1),
	}, actorFor(member))
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "members can only enter data for themselves", err.Error())

	entry, err := svc.CreateEntry(CreateEntryInput{
		CompetitionID: comp.ID,
		UserID:        member.ID,
		Value:         decimal.RequireFromString("62.456"),
		Unit:          strPtr("seconds"),
	}, actorFor(member))
	require.NoError(t, err)
	assert.Equal(t, "62.46", entry.Value.StringFixed(2))

	loaded, err := svc.GetCompetitionEntries(comp.ID, &member.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Value.Equal(decimal.RequireFromString("62.46")), loaded[0].Value.String())
}

func TestCreateEntryStateChecks(t *testing.T) {
	setupTestDB(t)
	svc := NewEntryService()

	staff := createTestUser(t, "staff@test.local", models.RoleStaff, true)
	member := createTestUser(t, "member@test.local", models.RoleMember, true)
	inactive := createTestUser(t, "gone@test.local", models.RoleMember, false)
	comp := createTestCompetition(t, staff, models.EntryStaffOnly)

	tests := []struct {
		name  string
		input CreateEntryInput
		actor Actor
		kind  error
		msg   string
	}{
		{
			name:  "missing competition",
			input: CreateEntryInput{CompetitionID: 9999, UserID: member.ID},
			actor: actorFor(staff),
			kind:  apperr.ErrNotFound,
			msg:   "competition not found",
		},
		{
			name:  "missing subject",
			input: CreateEntryInput{CompetitionID: comp.ID, UserID: 9999},
			actor: actorFor(staff),
			kind:  apperr.ErrNotFound,
			msg:   "user not found",
		},
		{
			name:  "inactive subject",
			input: CreateEntryInput{CompetitionID: comp.ID, UserID: inactive.ID},
			actor: actorFor(staff),
			kind:  apperr.ErrInvalidState,
			msg:   "user is not active",
		},
		{
			name:  "missing entrant",
			input: CreateEntryInput{CompetitionID: comp.ID, UserID: member.ID},
			actor: Actor{UserID: 9999, Role: models.RoleStaff},
			kind:  apperr.ErrNotFound,
			msg:   "entered by user not found",
		},
		{
			name:  "inactive entrant",
			input: CreateEntryInput{CompetitionID: comp.ID, UserID: member.ID},
			actor: actorFor(inactive),
			kind:  apperr.ErrInvalidState,
			msg:   "entered by user is not active",
		},
		{
			name:  "negative value",
			input: CreateEntryInput{CompetitionID: comp.ID, UserID: member.ID, Value: decimal.NewFromInt(-1)},
			actor: actorFor(staff),
			kind:  apperr.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEntry(tt.input, tt.actor)
			require.ErrorIs(t, err, tt.kind)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, err.Error())
			}
		})
	}

	setCompetitionStatus(t, comp, models.StatusInactive)
	_, err := svc.CreateEntry(CreateEntryInput{CompetitionID: comp.ID, UserID: member.ID}, actorFor(staff))
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, "competition is not active", err.Error())
}

func TestUpdateEntry(t *testing.T) {
	setupTestDB(t)
	svc := NewEntryService()

	admin := createTestUser(t, "admin@test.local", models.RoleAdministrator, true)
	staff := createTestUser(t, "staff@test.local", models.RoleStaff, true)
	otherStaff := createTestUser(t, "other@test.local", models.RoleStaff, true)
	member := createTestUser(t, "member@test.local", models.RoleMember, true)

	staffOnly := createTestCompetition(t, staff, models.EntryStaffOnly)
	userEntry := createTestCompetition(t, staff, models.EntryUserEntry)

	staffEntry, err := svc.CreateEntry(CreateEntryInput{
		CompetitionID: staffOnly.ID, UserID: member.ID, Value: decimal.NewFromInt(40),
	}, actorFor(staff))
	require.NoError(t, err)
	ownEntry, err := svc.CreateEntry(CreateEntryInput{
		CompetitionID: userEntry.ID, UserID: member.ID, Value: decimal.NewFromInt(5), Notes: strPtr("first try"),
	}, actorFor(member))
	require.NoError(t, err)

	value := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	t.Run("assigned staff updates", func(t *testing.T) {
		updated, err := svc.UpdateEntry(staffEntry.ID, UpdateEntryInput{Value: value("45.5")}, actorFor(staff))
		require.NoError(t, err)
		assert.Equal(t, "45.50", updated.Value.StringFixed(2))

		logs := auditRows(t, models.ActionUpdate, models.ResourceCompetitionEntry)
		require.NotEmpty(t, logs)
		assert.Equal(t, fmt.Sprintf("Updated entry %d in competition Squat Test", staffEntry.ID), *logs[len(logs)-1].Details)
	})

	t.Run("owner on staff_only forbidden", func(t *testing.T) {
		_, err := svc.UpdateEntry(staffEntry.ID, UpdateEntryInput{Value: value("99")}, actorFor(member))
		require.ErrorIs(t, err, apperr.ErrForbidden)
		assert.Equal(t, "users cannot edit entries for this competition", err.Error())
	})

	t.Run("unassigned staff forbidden", func(t *testing.T) {
		_, err := svc.UpdateEntry(staffEntry.ID, UpdateEntryInput{Value: value("1")}, actorFor(otherStaff))
		require.ErrorIs(t, err, apperr.ErrForbidden)
		assert.Equal(t, "insufficient permissions to update this entry", err.Error())
	})

	t.Run("owner on user_entry clears notes", func(t *testing.T) {
		updated, err := svc.UpdateEntry(ownEntry.ID, UpdateEntryInput{Notes: Null[string](), Unit: Some("reps")}, actorFor(member))
		require.NoError(t, err)
		assert.Nil(t, updated.Notes)
		require.NotNil(t, updated.Unit)
		assert.Equal(t, "reps", *updated.Unit)
		assert.True(t, updated.Value.Equal(decimal.NewFromInt(5)))
	})

	t.Run("inactive competition blocks everyone", func(t *testing.T) {
		setCompetitionStatus(t, userEntry, models.StatusCompleted)
		for _, actor := range []Actor{actorFor(admin), actorFor(staff), actorFor(member)} {
			_, err := svc.UpdateEntry(ownEntry.ID, UpdateEntryInput{Value: value("6")}, actor)
			require.ErrorIs(t, err, apperr.ErrInvalidState)
			assert.Equal(t, "cannot update entries for inactive or completed competitions", err.Error())
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := svc.UpdateEntry(9999, UpdateEntryInput{}, actorFor(admin))
		require.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Equal(t, "competition entry not found", err.Error())
	})
}

func TestGetUserStats(t *testing.T) {
	setupTestDB(t)
	svc := NewEntryService()

	admin := createTestUser(t, "admin@test.local", models.RoleAdministrator, true)
	staff := createTestUser(t, "staff@test.local", models.RoleStaff, true)
	otherStaff := createTestUser(t, "other@test.local", models.RoleStaff, true)
	member := createTestUser(t, "member@test.local", models.RoleMember, true)
	peer := createTestUser(t, "peer@test.local", models.RoleMember, true)

	mine := createTestCompetition(t, staff, models.EntryStaffOnly)
	theirs := createTestCompetition(t, otherStaff, models.EntryStaffOnly)

	_, err := svc.CreateEntry(CreateEntryInput{CompetitionID: mine.ID, UserID: member.ID, Value: decimal.NewFromInt(10)}, actorFor(staff))
	require.NoError(t, err)
	_, err = svc.CreateEntry(CreateEntryInput{CompetitionID: theirs.ID, UserID: member.ID, Value: decimal.NewFromInt(20)}, actorFor(otherStaff))
	require.NoError(t, err)
	_, err = svc.CreateEntry(CreateEntryInput{CompetitionID: theirs.ID, UserID: peer.ID, Value: decimal.NewFromInt(30)}, actorFor(otherStaff))
	require.NoError(t, err)

	all, err := svc.GetUserStats(member.ID, actorFor(admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.GetUserStats(member.ID, actorFor(member))
	require.NoError(t, err)
	assert.Len(t, own, 2)

	_, err = svc.GetUserStats(peer.ID, actorFor(member))
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "members can only view their own statistics", err.Error())

	scoped, err := svc.GetUserStats(member.ID, actorFor(staff))
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, mine.ID, scoped[0].CompetitionID)

	_, err = svc.GetUserStats(peer.ID, actorFor(staff))
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "staff can only view statistics for users in their assigned competitions", err.Error())

	_, err = svc.GetUserStats(9999, actorFor(admin))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetUserStatsStaffSelfIsScoped(t *testing.T) {
	setupTestDB(t)
	svc := NewEntryService()

	staff := createTestUser(t, "staff@test.local", models.RoleStaff, true)
	otherStaff := createTestUser(t, "other@test.local", models.RoleStaff, true)

	mine := createTestCompetition(t, staff, models.EntryUserEntry)
	theirs := createTestCompetition(t, otherStaff, models.EntryUserEntry)

	_, err := svc.CreateEntry(CreateEntryInput{CompetitionID: theirs.ID, UserID: staff.ID, Value: decimal.NewFromInt(40)}, actorFor(staff))
	require.NoError(t, err)

	stats, err := svc.GetUserStats(staff.ID, actorFor(staff))
	require.NoError(t, err)
	assert.Empty(t, stats)

	_, err = svc.CreateEntry(CreateEntryInput{CompetitionID: mine.ID, UserID: staff.ID, Value: decimal.NewFromInt(50)}, actorFor(staff))
	require.NoError(t, err)

	stats, err = svc.GetUserStats(staff.ID, actorFor(staff))
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, mine.ID, stats[0].CompetitionID)
}
