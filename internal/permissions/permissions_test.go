package permissions_test

import (
	"testing"

	"github.com/devwiki-api/internal/apperr"
	"github.com/devwiki-api/internal/models"
	"github.com/devwiki-api/internal/permissions"
)

func user(mutate func(*models.User)) *models.User {
	u := &models.User{ID: "u1"}
	if mutate != nil {
		mutate(u)
	}
	return u
}

func TestArticleCreateTable(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.User
		wantKind apperr.Kind
	}{
		{"anonymous", nil, apperr.KindUnauthenticated},
		{"regular user", user(nil), apperr.Kind(-1)},
		{"banned user", user(func(u *models.User) { u.IsBanned = true }), apperr.KindForbidden},
		{"muted user", user(func(u *models.User) { u.IsMuted = true }), apperr.KindForbidden},
		{"banned admin", user(func(u *models.User) { u.IsSuperuser = true; u.IsBanned = true }), apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := permissions.Articles.Check(permissions.ActionCreate, tt.identity, "")
			if tt.wantKind == apperr.Kind(-1) {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected deny, got allow")
			}
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, got)
			}
		})
	}
}

func TestOwnershipClauses(t *testing.T) {
	owner := user(nil)
	stranger := user(func(u *models.User) { u.ID = "u2" })
	admin := user(func(u *models.User) { u.ID = "u3"; u.IsStaff = true })
	moderator := user(func(u *models.User) { u.ID = "u4"; u.IsModer = true })

	if err := permissions.Articles.Check(permissions.ActionUpdate, owner, owner.ID); err != nil {
		t.Errorf("owner should update own article: %v", err)
	}
	if err := permissions.Articles.Check(permissions.ActionUpdate, admin, owner.ID); err != nil {
		t.Errorf("admin should update foreign article: %v", err)
	}
	if err := permissions.Articles.Check(permissions.ActionUpdate, moderator, owner.ID); err != nil {
		t.Errorf("moderator should update foreign article: %v", err)
	}
	if err := permissions.Articles.Check(permissions.ActionUpdate, stranger, owner.ID); err == nil {
		t.Error("stranger should not update foreign article")
	}

	// Comments grant foreign edits to admins only
	if err := permissions.Comments.Check(permissions.ActionUpdate, moderator, owner.ID); err == nil {
		t.Error("moderator should not edit foreign comments")
	}
	if err := permissions.Comments.Check(permissions.ActionUpdate, admin, owner.ID); err != nil {
		t.Errorf("admin should edit foreign comments: %v", err)
	}
}

func TestDenialMessages(t *testing.T) {
	err := permissions.Articles.Check(permissions.ActionUpdate, user(func(u *models.User) { u.ID = "u2" }), "u1")
	e, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected apperr, got %v", err)
	}
	if e.Message != apperr.PermissionDeniedMessage {
		t.Errorf("expected canonical denial message, got %q", e.Message)
	}
}

func TestDefaultRuleset(t *testing.T) {
	// Unknown actions fall back to the table default
	if err := permissions.Articles.Check(permissions.Action("unknown"), nil, ""); err == nil {
		t.Error("anonymous should be denied by the default ruleset")
	}
	if err := permissions.Articles.Check(permissions.Action("unknown"), user(nil), ""); err != nil {
		t.Errorf("authenticated user should pass the default ruleset: %v", err)
	}

	// The admin panel default denies everyone below admin
	if err := permissions.AdminAccounts.Check(permissions.ActionList, user(func(u *models.User) { u.IsModer = true }), ""); err == nil {
		t.Error("moderator should not reach the accounts panel")
	}
	if err := permissions.AdminAccounts.Check(permissions.ActionList, user(func(u *models.User) { u.IsStaff = true }), ""); err != nil {
		t.Errorf("staff should reach the accounts panel: %v", err)
	}
}

func TestVoteRequiresUnbanned(t *testing.T) {
	if err := permissions.Articles.Check(permissions.ActionVote, user(nil), ""); err != nil {
		t.Errorf("regular user should vote: %v", err)
	}
	if err := permissions.Articles.Check(permissions.ActionVote, user(func(u *models.User) { u.IsBanned = true }), ""); err == nil {
		t.Error("banned user should not vote")
	}
	// Muting silences writing, not voting
	if err := permissions.Articles.Check(permissions.ActionVote, user(func(u *models.User) { u.IsMuted = true }), ""); err != nil {
		t.Errorf("muted user should still vote: %v", err)
	}
}
