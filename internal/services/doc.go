// Package services defines provider interfaces and implements them for the Crunchyroll catalog and AniList lookup APIs.
//
// # Interfaces
//
// [CatalogSource] supplies the raw series snapshot; [LookupService] answers
// batched title searches with candidate records. Both are external
// collaborators: everything algorithmic (matching, batching policy, diffing)
// lives in the match and tasks packages.
//
// # Crunchyroll Implementation
//
// [CrunchyrollService] authenticates anonymously with the provider's public
// client token (HTTP Basic on the token endpoint, grant_type=client_id) and
// browses the series catalog through an [oauth2.NewClient] bearing the
// resulting token. The first fetched record is shape-checked so an upstream
// schema change aborts the run before anything is written.
//
// # AniList Implementation
//
// [AnilistService] batches title searches into a single aliased GraphQL
// document (anime0, anime1, ...) so each batch consumes one request. The
// provider signals throttling with HTTP 429, surfaced as a distinct error.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : token acquisition failed
//   - [shared.ErrSchemaDrift] : catalog record shape no longer matches
//   - [shared.ErrRateLimited] : lookup returned HTTP 429
//   - [shared.ErrAPIRequest] : any other HTTP failure
package services
