package testutil

import "github.com/wepublish/wepublish-api/pkg/publishing"

// AdminSession returns a session holding the built-in admin role.
func AdminSession() *publishing.Session {
	return &publishing.Session{UserID: "admin-user", Roles: []publishing.Role{publishing.RoleAdmin}}
}

// EditorSession returns a session holding the built-in editor role.
func EditorSession() *publishing.Session {
	return &publishing.Session{UserID: "editor-user", Roles: []publishing.Role{publishing.RoleEditor}}
}

// PeerSession returns a session that may only read shared articles.
func PeerSession() *publishing.Session {
	return &publishing.Session{UserID: "peer-user", Roles: []publishing.Role{publishing.RolePeer}}
}

// Draft returns a minimal revision input with the given title and slug.
func Draft(title, slug string) publishing.RevisionInput {
	return publishing.RevisionInput{
		Title: title,
		Slug:  slug,
		Tags:  []string{},
	}
}
