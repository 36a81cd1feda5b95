// Package rbac is the role and permission model of simple-crm.
//
// It holds two compiled-in, versioned tables and the pure functions that
// every dashboard surface consults:
//
//   - the role Catalog: which roles each role may manage, and the default
//     permission tags each role is granted;
//   - the MenuTable: which navigation sections and items each role sees.
//
// Both tables are validated when the package loads (see NewPolicy); an
// inconsistent table stops the process instead of silently falling back.
//
// # Roles
//
// Role is a closed enumeration. Tags coming from outside (JSON bodies, JWT
// claims, query strings) go through ParseRole, which rejects anything
// unknown with errors.ErrCodeInvalidRole:
//
//	role, err := rbac.ParseRole(r.URL.Query().Get("role"))
//	if err != nil {
//		errors.Render(w, r, err)
//		return
//	}
//
// # Resolver
//
//	rbac.ManageableRoles(rbac.Manager)     // [team_leader call_center intern]
//	rbac.DefaultPermissions(rbac.TeamLeader) // [team_view call_monitoring]
//	rbac.CanManage(rbac.HR, rbac.Intern)     // true
//
// Changing an entity's role replaces its permissions with
// DefaultPermissions of the new role. Nothing is merged.
//
// # Guard
//
// Check takes the actor explicitly and returns a Decision. It never
// returns an error and never logs; callers refuse the mutation when
// Allowed is false.
//
//	d := rbac.Default().Check(actor, rbac.ActionChangeRole, target, rbac.TeamLeader)
//	if !d.Allowed {
//		// d.Reason is self_mutation, target_not_manageable, ...
//	}
//
// An actor can never change its own role, change its own status or delete
// itself. That rule is evaluated before the hierarchy, so it also holds for
// admin, which manages admin.
//
// # Navigation
//
//	for _, section := range rbac.VisibleMenuSections(rbac.HR) {
//		fmt.Println(section.Name, len(section.Items))
//	}
//	// HR Management 7
//	// General 2
package rbac
