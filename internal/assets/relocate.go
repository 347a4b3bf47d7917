package assets

import (
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/wolfeidau/ranger/internal/policy"
)

// esbuild hashes are 8 characters of upper case base32.
const esbuildHashAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

func isScript(ext string) bool {
	switch ext {
	case ".js", ".mjs", ".cjs":
		return true
	}
	return false
}

func isText(ext string) bool {
	return isScript(ext) || ext == ".css"
}

func isEsbuildHash(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(esbuildHashAlphabet, r) {
			return false
		}
	}
	return true
}

// logicalName strips the build timestamp and esbuild hash esbuild added to a
// staged file name, leaving the name the file was imported under.
func logicalName(base string, timestamp int64) string {
	stem := strings.TrimSuffix(base, path.Ext(base))
	stem = strings.TrimSuffix(stem, "-"+strconv.FormatInt(timestamp, 10))
	if i := strings.LastIndex(stem, "-"); i > 0 && isEsbuildHash(stem[i+1:]) {
		stem = stem[:i]
	}
	return stem
}

// publicURL joins the public base with an output relative path.
func publicURL(base, rel string) string {
	return strings.TrimSuffix(base, "/") + "/" + rel
}

// relocate moves every non-script output to the path chosen by the asset
// policy and rewrites references to it in scripts and stylesheets. Source
// maps follow the file they describe. It returns the moved files sorted by
// path and the old to new path mapping.
func relocate(files []OutputFile, bctx policy.BuildContext, base string) ([]OutputFile, map[string]string) {
	moves := map[string]string{}

	for _, f := range files {
		ext := path.Ext(f.Path)
		if ext == ".map" || isScript(ext) {
			continue
		}
		name := logicalName(path.Base(f.Path), bctx.Timestamp)
		tmpl := policy.RouteAsset(policy.AssetCandidate{Name: name + ext}, bctx)
		moves[f.Path] = policy.Resolve(tmpl, name, contentHash(f.Contents))
	}

	hasMap := map[string]bool{}
	for _, f := range files {
		if owner, ok := strings.CutSuffix(f.Path, ".map"); ok {
			hasMap[owner] = true
			if to, moved := moves[owner]; moved {
				moves[f.Path] = to + ".map"
			}
		}
	}

	var pairs []string
	for _, from := range slices.Sorted(maps.Keys(moves)) {
		to := moves[from]
		if strings.HasSuffix(from, ".map") {
			continue
		}
		pairs = append(pairs, publicURL(base, from), publicURL(base, to))
		if hasMap[from] {
			pairs = append(pairs,
				"sourceMappingURL="+path.Base(from)+".map",
				"sourceMappingURL="+path.Base(to)+".map")
		}
	}
	replacer := strings.NewReplacer(pairs...)

	out := make([]OutputFile, 0, len(files))
	for _, f := range files {
		moved := OutputFile{Path: f.Path, Contents: f.Contents}
		if to, ok := moves[f.Path]; ok {
			moved.Path = to
		}
		if len(pairs) > 0 && isText(path.Ext(f.Path)) {
			moved.Contents = []byte(replacer.Replace(string(f.Contents)))
		}
		out = append(out, moved)
	}

	slices.SortFunc(out, func(a, b OutputFile) int {
		return strings.Compare(a.Path, b.Path)
	})

	return out, moves
}
