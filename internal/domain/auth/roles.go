package auth

import "strings"

const (
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

const (
	PermRecordsRead   = "records.read"
	PermRecordsWrite  = "records.write"
	PermAnalyticsRead = "analytics.read"
	PermReportsExport = "reports.export"
	PermAuditRead     = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleEditor: {
		PermRecordsRead,
		PermRecordsWrite,
		PermAnalyticsRead,
		PermReportsExport,
		PermAuditRead,
	},
	RoleViewer: {
		PermRecordsRead,
		PermAnalyticsRead,
	},
}

// NormalizeRole maps anything outside the known set to the least-privileged role.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleEditor:
		return RoleEditor
	default:
		return RoleViewer
	}
}

func RoleHasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[NormalizeRole(role)] {
		if perm == permission {
			return true
		}
	}
	return false
}

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	AccountID int64
	Username  string
	Role      string
	SessionID string
}
