package archive

import (
	"context"
	"os/exec"
	"regexp"

	"github.com/shogo82148/androidbinary/apk"

	"github.com/matzehuels/modmirror/pkg/errors"
)

// NativePackageReader decodes the binary AndroidManifest.xml in-process.
type NativePackageReader struct{}

// PackageName returns the manifest's package attribute.
func (NativePackageReader) PackageName(_ context.Context, path string) (string, error) {
	pkg, err := apk.OpenFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMetadataExtraction, err, "cannot read apk %s", path)
	}
	defer pkg.Close()

	name := pkg.PackageName()
	if name == "" {
		return "", errors.New(errors.ErrCodeMetadataExtraction, "apk %s has no package name", path)
	}
	return name, nil
}

var badgingPackageRegex = regexp.MustCompile(`package: name='([^']+)'`)

// AaptPackageReader runs "aapt dump badging" and parses its output.
type AaptPackageReader struct {
	// Binary is the aapt executable. Empty means "aapt" on PATH.
	Binary string
}

// PackageName runs aapt against path.
func (r AaptPackageReader) PackageName(ctx context.Context, path string) (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "aapt"
	}
	out, err := exec.CommandContext(ctx, bin, "dump", "badging", path).Output()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMetadataExtraction, err, "aapt dump badging %s", path)
	}
	return ParseBadging(string(out))
}

// ParseBadging extracts the package name from aapt badging output.
func ParseBadging(out string) (string, error) {
	m := badgingPackageRegex.FindStringSubmatch(out)
	if m == nil {
		return "", errors.New(errors.ErrCodeMetadataExtraction, "failed to extract package name from aapt output")
	}
	return m[1], nil
}
