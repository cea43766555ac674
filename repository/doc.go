// Package repository executes member and team reads on bun: single-result
// fetches, eager and lazy-count pagination, projections, aggregates, and
// bulk statements that notify cache invalidators.
package repository
