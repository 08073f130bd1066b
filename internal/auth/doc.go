// Package auth provides authentication and authorization for the API.
//
// Clients log in for a short-lived HS256 bearer token whose subject is the
// user ID. Every gated route resolves the token to an active user and then
// asks the configured Policy whether that user may perform the route's
// Action.
//
// # Policies
//
// Set AUTH_POLICY to select one:
//
//	AUTH_POLICY=flags  # Default, staff or superuser flag gates mutations
//	AUTH_POLICY=rbac   # Flags short-circuit, then user -> role -> permission
//
// Under rbac the permission names are the Action values; they are seeded by
// the migrate command.
//
// # Usage
//
//	tokens := auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry)
//	policy, _ := auth.NewPolicy(cfg.Auth.Policy, rbacRepo)
//	mw := auth.NewMiddleware(tokens, usersRepo, policy)
//	router.POST("/hymns", mw.Require(auth.ActionCreateHymn), handler)
//
// Handlers read the actor with auth.GetActor(c).
package auth
