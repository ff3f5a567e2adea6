// Package permissions resolves (identity, resource, action) to allow/deny
// through explicit decision tables: each action maps to an ordered list of
// clauses, a clause passes when ALL of its predicates hold, and the action
// is allowed when ANY clause passes.
package permissions

import (
	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/models"
)

// Predicate is a single capability check
type Predicate int

const (
	AllowAny Predicate = iota
	IsAuthenticated
	IsOwner
	IsAdmin
	IsModerator
	NotBanned
	NotMuted
)

// Clause passes when all of its predicates hold
type Clause []Predicate

// Ruleset passes when any of its clauses pass
type Ruleset []Clause

// Action names map one-to-one onto HTTP operations
type Action string

const (
	ActionCreate        Action = "create"
	ActionList          Action = "list"
	ActionRetrieve      Action = "retrieve"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDestroy       Action = "destroy"
	ActionListDeleted   Action = "list_deleted"
	ActionPatchDeleted  Action = "patch_deleted"
	ActionVote          Action = "vote"
)

// Table is the per-resource decision table. Actions missing from
// ByAction fall back to Default.
type Table struct {
	ByAction map[Action]Ruleset
	Default  Ruleset
}

// Resolve returns the ruleset for an action
func (t *Table) Resolve(action Action) Ruleset {
	if rs, ok := t.ByAction[action]; ok {
		return rs
	}
	return t.Default
}

// Check evaluates the ruleset for the action. identity is nil for
// anonymous requests; ownerID is empty when the action has no target
// object. Denial surfaces as 401 for anonymous callers and 403 otherwise.
func (t *Table) Check(action Action, identity *models.User, ownerID string) error {
	rs := t.Resolve(action)
	for _, clause := range rs {
		if clauseHolds(clause, identity, ownerID) {
			return nil
		}
	}
	if identity == nil {
		return apperr.Unauthenticated("")
	}
	return apperr.Forbidden()
}

func clauseHolds(clause Clause, identity *models.User, ownerID string) bool {
	for _, p := range clause {
		if !predicateHolds(p, identity, ownerID) {
			return false
		}
	}
	return true
}

func predicateHolds(p Predicate, identity *models.User, ownerID string) bool {
	switch p {
	case AllowAny:
		return true
	case IsAuthenticated:
		return identity != nil
	case IsOwner:
		return identity != nil && ownerID != "" && identity.ID == ownerID
	case IsAdmin:
		return identity != nil && (identity.IsStaff || identity.IsSuperuser)
	case IsModerator:
		return identity != nil && identity.IsModer
	case NotBanned:
		return identity != nil && !identity.IsBanned
	case NotMuted:
		return identity != nil && !identity.IsMuted
	}
	return false
}

// Articles is the decision table for the article resource.
// Create requires an authenticated, unbanned, unmuted author.
var Articles = &Table{
	ByAction: map[Action]Ruleset{
		ActionCreate:        {{IsAuthenticated, NotBanned, NotMuted}},
		ActionList:          {{AllowAny}},
		ActionRetrieve:      {{AllowAny}},
		ActionUpdate:        {{IsOwner}, {IsAdmin}, {IsModerator}},
		ActionPartialUpdate: {{IsOwner}, {IsAdmin}, {IsModerator}},
		ActionDestroy:       {{IsOwner}, {IsAdmin}, {IsModerator}},
		ActionListDeleted:   {{IsAuthenticated}},
		ActionPatchDeleted:  {{IsOwner}, {IsAdmin}, {IsModerator}},
		ActionVote:          {{IsAuthenticated, NotBanned}},
	},
	Default: Ruleset{{IsAuthenticated}},
}

// Comments is the decision table for the comment resource
var Comments = &Table{
	ByAction: map[Action]Ruleset{
		ActionCreate:        {{IsAuthenticated, NotBanned, NotMuted}},
		ActionList:          {{AllowAny}},
		ActionRetrieve:      {{AllowAny}},
		ActionUpdate:        {{IsOwner}, {IsAdmin}},
		ActionPartialUpdate: {{IsOwner}, {IsAdmin}},
		ActionDestroy:       {{IsOwner}, {IsAdmin}},
		ActionListDeleted:   {{IsAuthenticated}},
		ActionPatchDeleted:  {{IsOwner}, {IsAdmin}, {IsModerator}},
	},
	Default: Ruleset{{IsAuthenticated}},
}

// Tags is the decision table for the tag resource
var Tags = &Table{
	ByAction: map[Action]Ruleset{
		ActionCreate:        {{IsAuthenticated, NotBanned, NotMuted}},
		ActionList:          {{AllowAny}},
		ActionRetrieve:      {{AllowAny}},
		ActionUpdate:        {{IsOwner}, {IsAdmin}},
		ActionPartialUpdate: {{IsOwner}, {IsAdmin}},
		ActionDestroy:       {{IsOwner}, {IsAdmin}},
	},
	Default: Ruleset{{IsAuthenticated}},
}

// AdminAccounts is the decision table for the admin account panel
var AdminAccounts = &Table{
	Default: Ruleset{{IsAdmin}},
}
