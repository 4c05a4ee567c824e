package domain

import (
	"slices"
	"strings"
)

// Role is the closed set of actor kinds. Values are wire-level and case-sensitive.
type Role string

const (
	RoleCandidate  Role = "CANDIDATE"
	RoleMiddleman  Role = "MIDDLEMAN"
	RoleConsultant Role = "CONSULTANT"
	RoleAdmin      Role = "ADMIN"
)

var ValidRoles = []Role{RoleCandidate, RoleMiddleman, RoleConsultant, RoleAdmin}

func (r Role) Valid() bool {
	return slices.Contains(ValidRoles, r)
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Capabilities lists everything a role is allowed to do. Adding a role or an
// action is an edit to roleCapabilities only.
type Capabilities struct {
	// AllRoutes grants every path regardless of RoutePrefixes.
	AllRoutes          bool                `json:"all_routes"`
	RoutePrefixes      []string            `json:"route_prefixes"`
	DefaultRoute       string              `json:"default_route"`
	ApplicationActions []ApplicationAction `json:"application_actions"`
	ReviewDocuments    bool                `json:"review_documents"`
	UploadDocuments    bool                `json:"upload_documents"`
	ManageUsers        bool                `json:"manage_users"`
	ResolveDeletions   bool                `json:"resolve_deletions"`
	ManageSettings     bool                `json:"manage_settings"`
}

var reviewerActions = []ApplicationAction{
	ActionBeginEvaluation,
	ActionApprove,
	ActionReject,
	ActionRequestUpdate,
}

var roleCapabilities = map[Role]Capabilities{
	RoleCandidate: {
		RoutePrefixes:   []string{"/dashboard/candidate", "/profile"},
		DefaultRoute:    "/dashboard/candidate",
		UploadDocuments: true,
	},
	RoleMiddleman: {
		RoutePrefixes:   []string{"/dashboard/middleman", "/profile", "/candidates"},
		DefaultRoute:    "/dashboard/middleman",
		UploadDocuments: true,
	},
	RoleConsultant: {
		RoutePrefixes:      []string{"/dashboard/consultant", "/profile", "/candidates", "/documents/review", "/applications"},
		DefaultRoute:       "/dashboard/consultant",
		ApplicationActions: reviewerActions,
		ReviewDocuments:    true,
	},
	RoleAdmin: {
		AllRoutes:          true,
		RoutePrefixes:      []string{"/dashboard/admin", "/profile", "/candidates", "/documents/review", "/applications"},
		DefaultRoute:       "/dashboard/admin",
		ApplicationActions: reviewerActions,
		ReviewDocuments:    true,
		ManageUsers:        true,
		ResolveDeletions:   true,
		ManageSettings:     true,
	},
}

// CapabilitiesOf returns the capability set of r. Unknown roles get the zero
// value, which grants nothing.
func CapabilitiesOf(r Role) Capabilities {
	caps := roleCapabilities[r]
	caps.RoutePrefixes = slices.Clone(caps.RoutePrefixes)
	caps.ApplicationActions = slices.Clone(caps.ApplicationActions)
	return caps
}

func (r Role) Can(action ApplicationAction) bool {
	return slices.Contains(roleCapabilities[r].ApplicationActions, action)
}

// HasAccess reports whether r may open path. ADMIN matches everything; other
// roles match iff path starts with one of their prefixes.
func HasAccess(r Role, path string) bool {
	caps, ok := roleCapabilities[r]
	if !ok {
		return false
	}
	if caps.AllRoutes {
		return true
	}
	for _, prefix := range caps.RoutePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// DefaultRoute is the landing path of r, used after login and when bouncing a
// denied request. Unknown roles land on the login page.
func DefaultRoute(r Role) string {
	if caps, ok := roleCapabilities[r]; ok {
		return caps.DefaultRoute
	}
	return LoginRoute
}

const (
	LoginRoute = "/auth/login"
	SetupRoute = "/auth/setup"
)

var publicPrefixes = []string{"/auth/", "/health", "/test", "/settings/public", "/swagger/"}

// IsPublicPath reports whether path bypasses the gate.
func IsPublicPath(path string) bool {
	if path == "/" || path == "/auth" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
