// Package privacy decides which tracked paths must never be persisted.
//
// Patterns are globs evaluated segment by segment:
//   - `*`, `?` and `[...]` match within a single path segment
//   - `**` matches zero or more whole segments
//   - a pattern without `/` matches the final segment (basename) anywhere
//
// Matching is anchored to whole segments, so `**/secrets/**` excludes
// `config/secrets/db.json` but not `src/secret-manager.ts`.
//
// Usage:
//
//	if privacy.ShouldExclude("/home/me/app/.env.local", cfg.Privacy.ExcludePatterns) {
//	    // drop it before it reaches the checkpoint
//	}
package privacy
