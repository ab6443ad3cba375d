// Package authz implements the request authorization pipeline.
//
// Every protected operation runs an ordered chain of gates:
//
//	Global Role Gate (or Admin Gate)
//	  → [Membership Resolver → Project Role Gate]   project-scoped operations
//	  → [CEO Read-Only Gate]                        everything else
//
// Each gate receives the Decision built so far and either returns an enriched
// Decision or a tagged *auth.Error. The first failure ends the chain, so no
// handler side effect happens on a denied request.
//
// Ownership of a single resource is checked by handlers after the chain, with
// CheckOwnership, once the resource has been loaded.
package authz
