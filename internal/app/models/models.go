// Package models contains the canonical entity types the sync pipeline
// maintains. External catalog and aggregator records are merged into these
// rows; every type carries a natural key used for idempotent upserts.
package models
