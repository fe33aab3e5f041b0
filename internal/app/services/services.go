// Package services contains the reconciliation logic of the sync pipeline.
//
// Services defined in this package:
// - InstructorResolver: maps external names/emails to canonical instructors
// - SectionService: course/section upserts and roster merge
// - ReviewImporter: aggregator review import with cross-source matching
// - RollupService: derived rating recomputation
// - Pipeline: run orchestration, worker pool, summary
//
// Heuristic decision chains (abbreviation expansion, professor
// disambiguation, review-to-section assignment) are pure functions over
// fully-formed candidate lists so they can be tested without a database.
package services
