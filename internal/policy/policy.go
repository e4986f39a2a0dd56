// Package policy holds the authorization rules for competitions, entries,
// statistics, user management and impersonation.
//
// Every function is pure: callers load the entities, the policy decides.
// A nil error means allowed. Denials are *apperr.Error values of kind
// ErrForbidden (role or ownership) or ErrInvalidState (inactive account or
// closed competition). Checks run in a fixed order and the first failing
// one wins: actor active, target active, competition active, then role and
// ownership, then data-entry-method rules.
package policy

import (
	"fitcomp/internal/apperr"
	"fitcomp/internal/models"
)

// Principal is a user as the policy sees it.
type Principal struct {
	ID     uint
	Role   models.Role
	Active bool
}

// Of builds a Principal from a stored user.
func Of(u *models.User) Principal {
	return Principal{ID: u.ID, Role: u.Role, Active: u.IsActive}
}

// As builds a Principal from a stored user but with the role asserted by the
// caller's session, which differs from the stored one during impersonation.
func As(u *models.User, role models.Role) Principal {
	return Principal{ID: u.ID, Role: role, Active: u.IsActive}
}

func forbidden(msg string) error {
	return apperr.New(apperr.ErrForbidden, msg)
}

func invalidState(msg string) error {
	return apperr.New(apperr.ErrInvalidState, msg)
}

func unknownRole(r models.Role) error {
	return apperr.Newf(apperr.ErrForbidden, "unknown role %q", r)
}

// CanCreateCompetition allows staff and administrators.
func CanCreateCompetition(p Principal) error {
	if !p.Active {
		return invalidState("creator account is not active")
	}
	switch p.Role {
	case models.RoleAdministrator, models.RoleStaff:
		return nil
	case models.RoleMember:
		return forbidden("members cannot create competitions")
	default:
		return unknownRole(p.Role)
	}
}

// CompetitionChange is the part of a requested competition update the
// policy needs to see.
type CompetitionChange struct {
	Status *models.CompetitionStatus
}

// CanUpdateCompetition lets administrators change anything and staff change
// competitions they created or are assigned to, except marking them completed.
func CanUpdateCompetition(p Principal, c *models.Competition, change CompetitionChange) error {
	if !p.Active {
		return invalidState("user account is not active")
	}
	switch p.Role {
	case models.RoleAdministrator:
		return nil
	case models.RoleStaff:
		if c.CreatedBy != p.ID && !c.IsAssignedTo(p.ID) {
			return forbidden("staff can only update competitions they created or are assigned to")
		}
		if change.Status != nil && *change.Status == models.StatusCompleted {
			return forbidden("staff cannot mark competitions as completed")
		}
		return nil
	case models.RoleMember:
		return forbidden("insufficient permissions to update competitions")
	default:
		return unknownRole(p.Role)
	}
}

// CanDeleteCompetition is administrator only, whoever owns the competition.
func CanDeleteCompetition(p Principal) error {
	if !p.Active {
		return invalidState("user account is not active")
	}
	switch p.Role {
	case models.RoleAdministrator:
		return nil
	case models.RoleStaff, models.RoleMember:
		return forbidden("only administrators can delete competitions")
	default:
		return unknownRole(p.Role)
	}
}

// CompetitionOpen fails unless c accepts new or updated entries.
func CompetitionOpen(c *models.Competition) error {
	if c.Status != models.StatusActive {
		return invalidState("competition is not active")
	}
	return nil
}

// SubjectActive fails when the user an entry is recorded for is inactive.
func SubjectActive(subject Principal) error {
	if !subject.Active {
		return invalidState("user is not active")
	}
	return nil
}

// EntrantActive fails when the user recording an entry is inactive.
func EntrantActive(actor Principal) error {
	if !actor.Active {
		return invalidState("entered by user is not active")
	}
	return nil
}

// CanCreateEntry decides whether actor may record an entry for subject in c.
func CanCreateEntry(actor, subject Principal, c *models.Competition) error {
	if err := CompetitionOpen(c); err != nil {
		return err
	}
	if err := SubjectActive(subject); err != nil {
		return err
	}
	if err := EntrantActive(actor); err != nil {
		return err
	}

	switch actor.Role {
	case models.RoleAdministrator, models.RoleStaff:
		return nil
	case models.RoleMember:
	default:
		return unknownRole(actor.Role)
	}

	switch c.DataEntryMethod {
	case models.EntryStaffOnly:
		return forbidden("members cannot enter data for staff-only competitions")
	case models.EntryUserEntry:
		if subject.ID != actor.ID {
			return forbidden("members can only enter data for themselves")
		}
		return nil
	default:
		return forbidden("competition does not accept entries")
	}
}

// CanUpdateEntry allows administrators, the staff member assigned to the
// competition, and the entry's own user when the competition is user_entry.
func CanUpdateEntry(actor Principal, e *models.CompetitionEntry, c *models.Competition) error {
	if !actor.Active {
		return invalidState("user account is not active")
	}
	if c.Status != models.StatusActive {
		return invalidState("cannot update entries for inactive or completed competitions")
	}

	switch actor.Role {
	case models.RoleAdministrator:
		return nil
	case models.RoleStaff:
		if c.IsAssignedTo(actor.ID) {
			return nil
		}
	case models.RoleMember:
	default:
		return unknownRole(actor.Role)
	}

	if e.UserID != actor.ID {
		return forbidden("insufficient permissions to update this entry")
	}
	if c.DataEntryMethod != models.EntryUserEntry {
		return forbidden("users cannot edit entries for this competition")
	}
	return nil
}

// ScopeKind selects which competitions a listing returns.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeOwnedOrAssigned
	ScopeActiveOnly
)

// Scope is a listing filter. UserID is set for ScopeOwnedOrAssigned.
type Scope struct {
	Kind   ScopeKind
	UserID uint
}

// CompetitionScope shapes competition listings. A request with neither user
// nor role is an anonymous public view and sees active competitions; any
// other unmatched combination sees nothing.
func CompetitionScope(userID uint, role models.Role) Scope {
	switch role {
	case models.RoleAdministrator:
		return Scope{Kind: ScopeAll}
	case models.RoleStaff:
		if userID == 0 {
			return Scope{Kind: ScopeNone}
		}
		return Scope{Kind: ScopeOwnedOrAssigned, UserID: userID}
	case models.RoleMember:
		return Scope{Kind: ScopeActiveOnly}
	case "":
		if userID == 0 {
			return Scope{Kind: ScopeActiveOnly}
		}
	}
	return Scope{Kind: ScopeNone}
}

// Visible reports whether c falls inside s.
func (s Scope) Visible(c *models.Competition) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeOwnedOrAssigned:
		return c.CreatedBy == s.UserID || c.IsAssignedTo(s.UserID)
	case ScopeActiveOnly:
		return c.Status == models.StatusActive
	default:
		return false
	}
}

// StatsScope tells the caller whether results must be narrowed to the
// competitions the requester created or is assigned to.
type StatsScope struct {
	OwnCompetitionsOnly bool
}

// CanViewStats decides whether requester may read subjectID's entries.
// sharesCompetition is whether subjectID has an entry in a competition the
// requester created or is assigned to; it only matters for staff. Staff are
// always limited to their own competitions, including for their own stats.
func CanViewStats(requester Principal, subjectID uint, sharesCompetition bool) (StatsScope, error) {
	switch requester.Role {
	case models.RoleAdministrator:
		return StatsScope{}, nil
	case models.RoleStaff:
		if subjectID == requester.ID {
			return StatsScope{OwnCompetitionsOnly: true}, nil
		}
		if !sharesCompetition {
			return StatsScope{}, forbidden("staff can only view statistics for users in their assigned competitions")
		}
		return StatsScope{OwnCompetitionsOnly: true}, nil
	case models.RoleMember:
		if subjectID != requester.ID {
			return StatsScope{}, forbidden("members can only view their own statistics")
		}
		return StatsScope{}, nil
	default:
		return StatsScope{}, unknownRole(requester.Role)
	}
}

// CanImpersonate checks the administrator side of an impersonation.
func CanImpersonate(admin Principal) error {
	if admin.Role != models.RoleAdministrator {
		return forbidden("only administrators can impersonate users")
	}
	if !admin.Active {
		return invalidState("administrator account is not active")
	}
	return nil
}

// CanImpersonateTarget checks both sides of an impersonation.
func CanImpersonateTarget(admin, target Principal) error {
	if err := CanImpersonate(admin); err != nil {
		return err
	}
	if !target.Active {
		return invalidState("target user account is not active")
	}
	return nil
}

// CanCreateUser is administrator only.
func CanCreateUser(p Principal) error {
	if !p.Active {
		return invalidState("user account is not active")
	}
	if p.Role != models.RoleAdministrator {
		return forbidden("only administrators can create users")
	}
	return nil
}

// UserChange is the part of a requested user update the policy needs to see.
type UserChange struct {
	Role     bool
	IsActive bool
}

// CanUpdateUser lets administrators edit anyone and everyone else edit their
// own profile fields but not their role or active flag.
func CanUpdateUser(p Principal, targetID uint, change UserChange) error {
	if !p.Active {
		return invalidState("user account is not active")
	}
	switch p.Role {
	case models.RoleAdministrator:
		return nil
	case models.RoleStaff, models.RoleMember:
		if targetID != p.ID {
			return forbidden("only administrators can update other users")
		}
		if change.Role || change.IsActive {
			return forbidden("only administrators can change role or active status")
		}
		return nil
	default:
		return unknownRole(p.Role)
	}
}
