// Package simpledocs implements the authorization and document-lifecycle
// core of a multi-tenant document management service.
//
// The package resolves verified identity claims into a typed AuthContext,
// enforces a three-tier role/tenant access policy, and drives the
// document state machine (create with checksum dedup, metadata update,
// soft delete, restore) while recording every state change in an
// append-only audit trail.
//
// Persistence, signed-URL brokering and the identity directory are
// injected behind interfaces; see the repo, storage and directory
// sub-packages for implementations.
package simpledocs
