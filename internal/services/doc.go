// Package services defines the [TaskSource] and [ProjectWriter] interfaces and implements them for Notion and GitHub Projects V2.
//
// # Notion Implementation
//
// [NotionService] queries a database over the REST API, draining cursor
// pagination completely before any record is processed.
//
// Each page's properties are normalized by dispatching strictly on the
// property type tag (title, status, multi_select, people, date, rich_text).
// Unknown types are ignored so unmapped or future property types never abort
// a migration. Status and tag names pass through the configured lookup
// tables; unmapped names pass through unchanged.
//
// # GitHub Implementation
//
// [GitHubService] talks to the GraphQL endpoint with a static-token
// [oauth2] client. Project and field identity is resolved lazily and cached
// for the process lifetime; resolution failures are retried, successes never
// re-fetched.
//
// Importing a record is an ordered sequence of mutations: create a draft
// item (fatal on failure), then best-effort updates for body, status, due
// date, assignees, and labels. Assignees and tags are written as
// comma-joined text into custom fields; the native multi-user and label
// relations are deliberately not used, so identities are rendered as text
// rather than resolved to GitHub accounts.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : configuration incomplete at construction
//   - [shared.ErrAPIRequest] : remote call failed, first error message attached
//   - [shared.ErrProjectNotFound] : neither user nor organization lookup matched
package services
