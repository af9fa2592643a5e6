// Package models defines domain entities and persistence interfaces for the anidex catalog service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external provider data
//   - [CatalogItem] : Series metadata from the upstream catalog
//   - [MatchCandidate] : Candidate record from the secondary lookup provider
//   - [MatchResult] : Outcome of fuzzy-matching a title against candidates
//   - [EnrichedItem] : Catalog item with its attached enrichment payload
//   - [DiffReport] : Set-based comparison of two catalog snapshots
//   - [ChangeLog] : Persisted, timestamped audit record derived from a diff
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [RunRecord] : One pipeline run with its change counters
//
// All persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
