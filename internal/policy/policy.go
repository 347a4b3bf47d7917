package policy

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// Placeholders left in templates for the build pipeline to fill in.
const (
	NamePlaceholder = "[name]"
	HashPlaceholder = "[hash]"
)

// Output directories relative to the build output root.
const (
	ImagesDir  = "assets/images"
	CSSDir     = "assets/css"
	ScriptsDir = "assets/js"
	AssetsDir  = "assets"
)

// Mode is the build mode, usually development or production. Any other
// value is accepted and treated like development.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode normalises a mode string. Empty means development.
func ParseMode(s string) Mode {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModeDevelopment
	}
	return Mode(s)
}

// IsProduction reports whether the mode is exactly production.
func (m Mode) IsProduction() bool {
	return m == ModeProduction
}

func (m Mode) String() string {
	return string(m)
}

// BuildContext is created once per build and never changes during it.
type BuildContext struct {
	Mode      Mode
	Timestamp int64
}

// NewBuildContext stamps a build with the Unix millisecond time of t.
func NewBuildContext(mode Mode, t time.Time) BuildContext {
	return BuildContext{Mode: mode, Timestamp: t.UnixMilli()}
}

// AssetKind is derived from an asset's file extension.
type AssetKind string

const (
	KindImage      AssetKind = "image"
	KindStylesheet AssetKind = "stylesheet"
	KindOther      AssetKind = "other"
)

var imageExtensions = map[string]struct{}{
	"gif":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"svg":  {},
}

// AssetCandidate is a file about to be emitted by the build.
type AssetCandidate struct {
	Name string
}

// Ext returns the extension of the candidate name, including the dot, as written.
func (a AssetCandidate) Ext() string {
	return path.Ext(a.Name)
}

// Kind classifies the candidate by extension, ignoring case.
func (a AssetCandidate) Kind() AssetKind {
	ext := strings.ToLower(strings.TrimPrefix(a.Ext(), "."))
	if _, ok := imageExtensions[ext]; ok {
		return KindImage
	}
	if ext == "css" {
		return KindStylesheet
	}
	return KindOther
}

// RouteAsset returns the output path template for an asset. The template keeps
// the name and hash placeholders, embeds the build timestamp and ends with the
// candidate's original extension.
func RouteAsset(candidate AssetCandidate, ctx BuildContext) string {
	dir := AssetsDir
	switch candidate.Kind() {
	case KindImage:
		dir = ImagesDir
	case KindStylesheet:
		dir = CSSDir
	}
	return template(dir, ctx.Timestamp, candidate.Ext())
}

// RouteScript returns the output path template for entry and chunk scripts.
func RouteScript(ctx BuildContext) string {
	return template(ScriptsDir, ctx.Timestamp, ".js")
}

func template(dir string, timestamp int64, ext string) string {
	var b strings.Builder
	b.WriteString(dir)
	b.WriteString("/")
	b.WriteString(NamePlaceholder)
	b.WriteString("-")
	b.WriteString(HashPlaceholder)
	b.WriteString("-")
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteString(ext)
	return b.String()
}

// Resolve fills the name and hash placeholders of a template.
func Resolve(template, name, hash string) string {
	return strings.NewReplacer(NamePlaceholder, name, HashPlaceholder, hash).Replace(template)
}
