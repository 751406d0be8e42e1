// Package policy is the single source of truth for every authorization
// decision in the system. All functions are pure; handlers and services must
// never compare roles anywhere else.
package policy

import "github.com/siteworks/records-api/internal/core/domain"

// Action enumerates the operations the access policy rules on.
type Action string

const (
	ActionCreateProgress Action = "create_progress"
	ActionCreatePayment  Action = "create_payment"
	ActionReview         Action = "review"
	ActionListPending    Action = "list_pending"
	ActionListReviewed   Action = "list_reviewed"
	ActionManageUsers    Action = "manage_users"
)

// table is the role/action grant matrix. Owner-scoped decisions (delete,
// record visibility) live in CanDelete and CanViewRecord below because they
// depend on more than the role.
var table = map[domain.Role]map[Action]bool{
	domain.RoleAdmin: {
		ActionReview:       true,
		ActionListPending:  true,
		ActionListReviewed: true,
		ActionManageUsers:  true,
	},
	domain.RoleSiteEngineer: {
		ActionCreateProgress: true,
		ActionListPending:    true, // own records only
		ActionListReviewed:   true, // own records only
	},
	domain.RolePayingAuthority: {
		ActionCreatePayment: true,
		ActionListPending:   true, // own records only
		ActionListReviewed:  true, // own records only
	},
	domain.RoleViewer: {
		ActionListReviewed: true, // read-only, all records
	},
}

// Allows reports whether role may perform action at all, ignoring ownership.
func Allows(role domain.Role, action Action) bool {
	return table[role][action]
}

// CanCreate reports whether role may create records of the given kind.
func CanCreate(role domain.Role, kind domain.RecordKind) bool {
	switch kind {
	case domain.KindProgress:
		return Allows(role, ActionCreateProgress)
	case domain.KindPayment:
		return Allows(role, ActionCreatePayment)
	}
	return false
}

// CanDelete reports whether the caller may delete a pending record owned by
// ownerID: the owner themselves, or an admin. State checks (pending only) are
// the workflow engine's concern, not the policy's.
func CanDelete(role domain.Role, callerID, ownerID string) bool {
	if role == domain.RoleAdmin {
		return true
	}
	return callerID == ownerID && callerID != ""
}

// CanViewRecord implements the visibility rule shared by listing, commenting
// and single-record reads:
//
//   - admin sees every record in every status
//   - site_engineer and paying_authority see only their own records
//   - viewer sees approved and rejected records of everyone, never pending
func CanViewRecord(role domain.Role, callerID string, rec *domain.Record) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleSiteEngineer, domain.RolePayingAuthority:
		return rec.CreatorID == callerID
	case domain.RoleViewer:
		return rec.Status != domain.StatusPending
	}
	return false
}

// OwnerScoped reports whether list queries for role must be restricted to the
// caller's own records.
func OwnerScoped(role domain.Role) bool {
	return role == domain.RoleSiteEngineer || role == domain.RolePayingAuthority
}
