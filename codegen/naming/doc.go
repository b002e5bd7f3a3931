// Package naming contains shared naming helpers used by the pct code
// generators.
//
// The functions in this package centralize the kebab-to-snake and
// kebab-to-Pascal identifier translation rules so generated code remains
// consistent across generators. The translation is lossy: the trailing '?'
// and '!' markers of predicate and mutation names are stripped, so distinct
// spec names can collide after translation.
package naming
