// Package iam resolves who is calling and manages their sessions.
//
// Request flow:
//
//	Request → AuthenticateRequest → [SessionAuthenticator, JWTAuthenticator] → *auth.Principal
//	       ↓
//	   authz.Authorizer gates
//
// Resolution never fails because of bad credentials: a missing, malformed,
// expired or revoked credential simply yields no principal and the global
// role gate reports UNAUTHENTICATED. Only storage failures surface as errors.
//
// Sessions live in a SessionStore, either the database (default) or Redis.
package iam
