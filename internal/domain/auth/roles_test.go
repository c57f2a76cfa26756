package auth

import "testing"

func TestRolePermissionsKnownAndUnique(t *testing.T) {
	known := map[string]struct{}{
		PermRecordsRead:   {},
		PermRecordsWrite:  {},
		PermAnalyticsRead: {},
		PermReportsExport: {},
		PermAuditRead:     {},
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		seen := map[string]struct{}{}
		for _, perm := range perms {
			if _, ok := known[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
			if _, dup := seen[perm]; dup {
				t.Fatalf("role %s lists %s twice", role, perm)
			}
			seen[perm] = struct{}{}
		}
	}
	if len(RolePermissions[RoleEditor]) != len(known) {
		t.Fatalf("editor should hold every permission, has %v", RolePermissions[RoleEditor])
	}
}

func TestEditorHoldsViewerPermissions(t *testing.T) {
	for _, perm := range RolePermissions[RoleViewer] {
		if !RoleHasPermission(RoleEditor, perm) {
			t.Fatalf("editor lacks viewer permission %s", perm)
		}
	}
	if RoleHasPermission(RoleViewer, PermAuditRead) {
		t.Fatal("viewer must not read the audit log")
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "editor", want: RoleEditor},
		{in: " Editor ", want: RoleEditor},
		{in: "viewer", want: RoleViewer},
		{in: "admin", want: RoleViewer},
		{in: "", want: RoleViewer},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizeRole(tc.in); got != tc.want {
				t.Fatalf("NormalizeRole(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRoleHasPermission(t *testing.T) {
	if !RoleHasPermission(RoleEditor, PermRecordsWrite) {
		t.Fatal("editor should write records")
	}
	if RoleHasPermission(RoleViewer, PermRecordsWrite) {
		t.Fatal("viewer must not write records")
	}
	if RoleHasPermission(RoleViewer, PermReportsExport) {
		t.Fatal("viewer must not export reports")
	}
	if !RoleHasPermission("unknown", PermAnalyticsRead) {
		t.Fatal("unknown roles fall back to viewer permissions")
	}
}
