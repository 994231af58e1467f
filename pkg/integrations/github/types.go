package github

// ReleasePage is a fetched release page.
type ReleasePage struct {
	Source string // "owner/repo"
	URL    string // final URL after redirects; its last segment is the tag
	HTML   string // raw page markup
}
