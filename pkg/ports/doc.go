/*
Package ports defines the driven ports (interfaces) for weft hosts.

The graph engine itself has no I/O. These interfaces let sessions and the CLI
persist graph documents without knowing the backend.

# Key Interfaces

  - DocumentStore: persists encoded graph documents by id.
  - DistributedLocker: distributed locking for concurrent access to one document.

RunDocumentStoreContract is a shared test suite every DocumentStore adapter
runs against itself.
*/
package ports
