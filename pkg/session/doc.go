/*
Package session orchestrates access to persisted graphs.

A Manager loads documents from a ports.DocumentStore into fresh domain.Graph
contexts, re-attaches behaviour through a Binder and saves them back. Access
to one document id is serialized with an in-process mutex and, optionally, a
ports.DistributedLocker shared across replicas.
*/
package session
