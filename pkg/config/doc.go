// Package config loads the repository list and runtime settings.
//
// The repository list is read once at startup into an immutable [RepoList].
// It comes from repos.toml, repos.yaml or repos.yml (by extension); with no
// file, [DefaultRepos] is used:
//
//	[[repos]]
//	source_id = "tiann/KernelSU"
//	file_pattern = "*apk"
//	pinned_version = "v1.0.1"
//
//	[[repos]]
//	source_id = "KieronQuinn/AmbientMusicMod"
//	format_name = true
//
// Settings come from MODMIRROR_* environment variables, optionally seeded
// from a .env file, and are overridden by command-line flags.
package config
