// Package extract pulls release data out of raw page markup.
//
// GitHub renders release assets and repository overviews with client-side
// scripts and publishes no stable contract for that markup. Extraction is
// therefore marker based: each routine searches for fixed substrings and
// slices between them. When GitHub changes its markup only the marker scheme
// needs replacing, so the routines sit behind the [Extractor] interface and
// [GitHubMarkup] is the scheme currently in use.
//
// A missing marker is always an error with code MARKUP_PARSE_FAILURE naming
// the marker. The one accepted absence is the changelog: a release without a
// body yields "" and no error.
package extract
