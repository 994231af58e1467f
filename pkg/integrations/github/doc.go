// Package github fetches release data from github.com web pages.
//
// # Overview
//
// The mirror does not use the REST API: it reads the same pages a browser
// does, which keeps it unauthenticated and free of API rate-limit buckets.
// Five request shapes are used:
//
//   - [Client.ReleasePage]: /{owner}/{repo}/releases/latest or /releases/tag/{tag}
//   - [Client.LandingPage]: /{owner}/{repo}, which embeds the README path
//   - [Client.Readme]: raw.githubusercontent.com/{owner}/{repo}/HEAD/{path}
//   - [Client.AssetFragment]: the expanded_assets fragment listing downloads
//   - [Client.Download]: the selected release asset
//
// # Caching
//
// Fragment and README bodies are cached: a fragment URL embeds the tag and
// the README key includes the release version, so neither goes stale within
// its key. Release and landing pages are always fetched fresh.
//
// # Usage
//
//	client := github.NewClient(cache, integrations.Options{})
//	page, err := client.ReleasePage(ctx, "tiann/KernelSU", "")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(page.URL) // https://github.com/tiann/KernelSU/releases/tag/v1.0.1
package github
