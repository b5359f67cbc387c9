// Package search reduces a resolved manifest to the entries matching the run's
// search criteria.
//
// Two modes exist and a run uses at most one of them:
//
//   - Keyword mode: an entry is kept when any keyword matches its path or its
//     display name, case-insensitively. Keywords are additionally expanded
//     through the metadata provider's alias mapping, so searching a character's
//     romanized name also hits the internal file names derived from it.
//   - Attribute mode (JP only): each criterion is a bare token matched against
//     the display name, or a key=value pair matched against the entry's metadata
//     with case-insensitive equality. All criteria must match. Unknown keys
//     never match.
//
// Attribute mode and display names depend on the metadata capability, which in
// turn requires previously extracted character tables. When attribute mode is
// requested without that capability the filter fails with
// ErrSearchCapabilityUnavailable before anything is downloaded.
package search
