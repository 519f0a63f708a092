package publishing

import "fmt"

// Permission names a single capability checked before an operation runs.
type Permission string

const (
	PermissionCreateArticle         Permission = "CAN_CREATE_ARTICLE"
	PermissionGetArticle            Permission = "CAN_GET_ARTICLE"
	PermissionGetSharedArticle      Permission = "CAN_GET_SHARED_ARTICLE"
	PermissionDeleteArticle         Permission = "CAN_DELETE_ARTICLE"
	PermissionPublishArticle        Permission = "CAN_PUBLISH_ARTICLE"
	PermissionGetArticlePreviewLink Permission = "CAN_GET_ARTICLE_PREVIEW_LINK"
	PermissionCreatePage            Permission = "CAN_CREATE_PAGE"
	PermissionGetPage               Permission = "CAN_GET_PAGE"
	PermissionDeletePage            Permission = "CAN_DELETE_PAGE"
	PermissionPublishPage           Permission = "CAN_PUBLISH_PAGE"
	PermissionGetPagePreviewLink    Permission = "CAN_GET_PAGE_PREVIEW_LINK"
)

// Role is a named set of permissions.
type Role struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Permissions []Permission `json:"permissions" yaml:"permissions"`
}

// Has reports whether the role grants p.
func (r Role) Has(p Permission) bool {
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// Session is the authenticated caller. A nil *Session means the request is
// anonymous.
type Session struct {
	UserID string
	Roles  []Role
}

// Authoriser checks whether any of roles grants perm. It returns
// ErrNotAuthorised (possibly wrapped) on mismatch.
type Authoriser func(perm Permission, roles []Role) error

// Authorise is the default Authoriser.
func Authorise(perm Permission, roles []Role) error {
	if IsAuthorised(perm, roles) {
		return nil
	}
	return fmt.Errorf("%w: missing permission %s", ErrNotAuthorised, perm)
}

// IsAuthorised reports whether any role grants perm.
func IsAuthorised(perm Permission, roles []Role) bool {
	for _, role := range roles {
		if role.Has(perm) {
			return true
		}
	}
	return false
}

// Built-in roles.
var (
	RoleAdmin = Role{
		ID:   "admin",
		Name: "Admin",
		Permissions: []Permission{
			PermissionCreateArticle, PermissionGetArticle, PermissionGetSharedArticle,
			PermissionDeleteArticle, PermissionPublishArticle, PermissionGetArticlePreviewLink,
			PermissionCreatePage, PermissionGetPage, PermissionDeletePage,
			PermissionPublishPage, PermissionGetPagePreviewLink,
		},
	}

	RoleEditor = Role{
		ID:   "editor",
		Name: "Editor",
		Permissions: []Permission{
			PermissionCreateArticle, PermissionGetArticle, PermissionGetSharedArticle,
			PermissionPublishArticle, PermissionGetArticlePreviewLink,
			PermissionCreatePage, PermissionGetPage,
			PermissionPublishPage, PermissionGetPagePreviewLink,
		},
	}

	RolePeer = Role{
		ID:          "peer",
		Name:        "Peer",
		Permissions: []Permission{PermissionGetSharedArticle},
	}
)

// DefaultRoles returns the built-in roles keyed by id.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		RoleAdmin.ID:  RoleAdmin,
		RoleEditor.ID: RoleEditor,
		RolePeer.ID:   RolePeer,
	}
}

// ResolveRoles maps role ids to roles, ignoring unknown ids.
func ResolveRoles(ids []string, known map[string]Role) []Role {
	roles := make([]Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := known[id]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

type kindPermissions struct {
	create      Permission
	get         Permission
	getShared   Permission
	delete      Permission
	publish     Permission
	previewLink Permission
}

func permissionsFor(kind Kind) kindPermissions {
	if kind == KindPage {
		return kindPermissions{
			create:      PermissionCreatePage,
			get:         PermissionGetPage,
			delete:      PermissionDeletePage,
			publish:     PermissionPublishPage,
			previewLink: PermissionGetPagePreviewLink,
		}
	}
	return kindPermissions{
		create:      PermissionCreateArticle,
		get:         PermissionGetArticle,
		getShared:   PermissionGetSharedArticle,
		delete:      PermissionDeleteArticle,
		publish:     PermissionPublishArticle,
		previewLink: PermissionGetArticlePreviewLink,
	}
}
