// Package mirror keeps a local copy of the latest release of each
// configured GitHub repository.
//
// # Pipeline
//
// For every repository [Syncer] runs, in order:
//
//  1. [Resolver]: fetch the release page and derive the version from the
//     final URL after redirects (".../releases/tag/v1.2" yields "v1.2").
//  2. The idempotency gate: if the stored record already has that version
//     and the run is not forced, stop here with no further requests or writes.
//  3. [Fetcher]: find the assets fragment, pick exactly one download that
//     matches the repository's file pattern, and download it.
//  4. Classify the artifact (apk, module or twrp) and, for apks, read the
//     package id.
//  5. Fetch the README and changelog and merge everything into the record.
//
// # Fault isolation
//
// A failure in any step fails only that repository: it is logged with the
// repository id, recorded in the [Report] and the run moves on. A failed
// repository keeps its old record, so the version gate retries it next run.
// The listing manifest is rewritten after all repositories finish, whatever
// their outcome.
//
// # Concurrency
//
// Repositories run sequentially by default. [Options.Jobs] runs up to that
// many repositories at once; the report keeps the declared order.
package mirror
