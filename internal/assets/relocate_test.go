package assets

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/ranger/internal/policy"
)

func TestLogicalName(t *testing.T) {
	tests := []struct {
		base     string
		expected string
	}{
		{base: "main-IJKLMNOP-1700.css", expected: "main"},
		{base: "logo-QWERTY23.png", expected: "logo"},
		{base: "my-logo.png", expected: "my-logo"},
		{base: "vendor-abcdefgh.png", expected: "vendor-abcdefgh"},
		{base: "QWERTY23.png", expected: "QWERTY23"},
		{base: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			require.Equal(t, tt.expected, logicalName(tt.base, 1700))
		})
	}
}

func TestContentHash(t *testing.T) {
	a := contentHash([]byte("png-bytes"))
	require.Equal(t, a, contentHash([]byte("png-bytes")))
	require.NotEqual(t, a, contentHash([]byte("other-bytes")))
	require.LessOrEqual(t, len(a), hashLength)
	require.NotEmpty(t, a)
}

func TestRelocate(t *testing.T) {
	bctx := policy.BuildContext{Mode: policy.ModeProduction, Timestamp: 1700}

	files := []OutputFile{
		{Path: "assets/js/main-ABCDEFGH-1700.js", Contents: []byte("var logo=\"/logo-QWERTY23.png\";\n//# sourceMappingURL=main-ABCDEFGH-1700.js.map\n")},
		{Path: "assets/js/main-ABCDEFGH-1700.js.map", Contents: []byte("{}")},
		{Path: "assets/js/main-IJKLMNOP-1700.css", Contents: []byte("body{background:url(/bg-ZXCVBN23.png)}\n/*# sourceMappingURL=main-IJKLMNOP-1700.css.map */\n")},
		{Path: "assets/js/main-IJKLMNOP-1700.css.map", Contents: []byte("{}")},
		{Path: "logo-QWERTY23.png", Contents: []byte("png-bytes")},
		{Path: "bg-ZXCVBN23.png", Contents: []byte("bg-bytes")},
		{Path: "inter-ABCDEF23.woff2", Contents: []byte("font-bytes")},
	}

	out, moves := relocate(files, bctx, "/")

	cssContents := files[2].Contents
	logo := "assets/images/logo-" + contentHash([]byte("png-bytes")) + "-1700.png"
	bg := "assets/images/bg-" + contentHash([]byte("bg-bytes")) + "-1700.png"
	css := "assets/css/main-" + contentHash(cssContents) + "-1700.css"
	font := "assets/inter-" + contentHash([]byte("font-bytes")) + "-1700.woff2"

	require.Equal(t, map[string]string{
		"logo-QWERTY23.png":                    logo,
		"bg-ZXCVBN23.png":                      bg,
		"inter-ABCDEF23.woff2":                 font,
		"assets/js/main-IJKLMNOP-1700.css":     css,
		"assets/js/main-IJKLMNOP-1700.css.map": css + ".map",
	}, moves)

	byPath := map[string]string{}
	for _, f := range out {
		byPath[f.Path] = string(f.Contents)
	}
	require.Len(t, byPath, len(files))

	require.Equal(t,
		"var logo=\"/"+logo+"\";\n//# sourceMappingURL=main-ABCDEFGH-1700.js.map\n",
		byPath["assets/js/main-ABCDEFGH-1700.js"])
	require.Equal(t,
		"body{background:url(/"+bg+")}\n/*# sourceMappingURL=main-"+contentHash(cssContents)+"-1700.css.map */\n",
		byPath[css])
	require.Contains(t, byPath, css+".map")
	require.Equal(t, "png-bytes", byPath[logo])

	for i := 1; i < len(out); i++ {
		require.Less(t, out[i-1].Path, out[i].Path)
	}
}

func TestRelocate_cdnBase(t *testing.T) {
	bctx := policy.BuildContext{Timestamp: 5}
	files := []OutputFile{
		{Path: "assets/js/app-ABCDEFGH-5.js", Contents: []byte(`"https://cdn.example.com/static/icon-QWERTY23.svg"`)},
		{Path: "icon-QWERTY23.svg", Contents: []byte("<svg/>")},
	}

	out, _ := relocate(files, bctx, "https://cdn.example.com/static/")
	icon := "assets/images/icon-" + contentHash([]byte("<svg/>")) + "-5.svg"
	require.Equal(t, icon, out[0].Path)
	require.Equal(t, "assets/js/app-ABCDEFGH-5.js", out[1].Path)
	require.Equal(t, `"https://cdn.example.com/static/`+icon+`"`, string(out[1].Contents))
}
