// Package iam manages the user directory of simple-crm.
//
// Users carry one rbac.Role, an active/inactive status and the permission
// tags granted by their role. Every mutation takes the acting user
// explicitly and is checked by the rbac guard before anything is written.
//
// # Basic Usage
//
//	repo := iam.NewInMemoryIamRepository()
//	service := iam.NewIamService(repo)
//
//	// The acting user comes from the authenticated request
//	actor := me.Actor()
//
//	user, err := service.CreateUser(ctx, actor, iam.CreateUserParams{
//		Name:  "Jane Doe",
//		Email: "jane@example.com",
//		Role:  rbac.Intern,
//	})
//
// # Role changes
//
// ChangeRole stores the new role and the new role's default permissions in
// a single repository write. The previous permission set is discarded:
//
//	user, _ = service.ChangeRole(ctx, actor, user.ID, rbac.CallCenter)
//	// user.Permissions == [calls messages time_tracking]
//
// # Denials
//
// A refused mutation returns an errors.ErrCodeForbidden error whose details
// name the action and the guard's reason:
//
//	err := service.DeleteUser(ctx, actor, actor.ID)
//	errors.GetDetails(err) // map[action:delete reason:self_mutation]
//
// Nothing is written when the guard refuses.
//
// # Directory
//
// FindUsers backs the teammates page. UserRows adds, for each user, whether
// the actor may change its role, toggle its status or delete it, so the
// dashboard can hide controls the server would refuse anyway.
package iam
