// Package models defines domain entities and persistence interfaces for the ngx task migration service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [TaskRecord] : Normalized Notion page with typed properties flattened into fields
//   - [FieldKind] / [KindTable] : Classification of GitHub Project fields by mutation payload
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Run] : One migration run with its final statistics
//   - [RunFailure] : A per-record failure attached to a run
//
// Persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
