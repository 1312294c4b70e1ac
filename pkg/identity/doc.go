/*
Package identity provides stable entity identifiers and the session-scoped
registry that resolves them.

Every persisted entity carries a uuid.UUID assigned at construction (or
restored from a document). A Registry maps identifiers back to entities, and a
Ref is a by-identifier pointer that resolves lazily through a Registry. Refs
exist so that a document can mention an entity before that entity has been
decoded: the reference stays Unresolved until a lookup succeeds, and it never
materializes a placeholder entity.

A Registry is not safe for concurrent use. Each editing session owns its own.
*/
package identity
