// Package role exposes the compiled-in role catalog to the dashboard.
//
// Roles are not stored: the six roles, who manages whom and the default
// permissions all come from package rbac. This package only joins that
// catalog with the user directory, for the Roles & Permissions page and the
// role selector.
//
//	service := role.NewRoleService(rbac.Default(), iamService)
//
//	roles, _ := service.FindRoles(ctx)
//	for _, r := range roles {
//		fmt.Printf("%s (%d users)\n", r.Label, r.UserCount)
//	}
//
//	// Roles the current user may assign
//	options := service.AssignableRoles(actor)
package role
