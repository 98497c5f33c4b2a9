// Package policy evaluates role-based permissions. Every orchestrator
// entry point consults this single capability instead of comparing
// role strings inline.
package policy

import (
	"github.com/nsf-ai/knowledge-assistant/internal/model"
)

// Action identifies an operation subject to authorization.
type Action string

const (
	ActionChat            Action = "chat"
	ActionListDocuments   Action = "documents.list"
	ActionUploadDocument  Action = "documents.upload"
	ActionProcessDocument Action = "documents.process"
	ActionDeleteDocument  Action = "documents.delete"
	ActionAdmin           Action = "admin"
)

// Policy maps actions to the roles permitted to perform them.
type Policy struct {
	rules map[Action][]string
}

// Default returns the built-in policy: chat and document listing for
// any authenticated role, uploads for admin and staff, processing,
// deletion and admin views for admins only.
func Default() *Policy {
	return &Policy{
		rules: map[Action][]string{
			ActionChat:            nil, // any authenticated user
			ActionListDocuments:   nil,
			ActionUploadDocument:  {model.RoleAdmin, model.RoleStaff},
			ActionProcessDocument: {model.RoleAdmin},
			ActionDeleteDocument:  {model.RoleAdmin},
			ActionAdmin:           {model.RoleAdmin},
		},
	}
}

// Allow reports whether role may perform action. Unknown actions are
// denied.
func (p *Policy) Allow(role string, action Action) bool {
	roles, ok := p.rules[action]
	if !ok {
		return false
	}
	if roles == nil {
		return role != ""
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
