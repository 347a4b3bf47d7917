package policy

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testContext() BuildContext {
	return BuildContext{Mode: ModeProduction, Timestamp: 1718000000123}
}

func TestRouteAsset(t *testing.T) {
	tests := []struct {
		name     string
		asset    string
		expected string
	}{
		{name: "png", asset: "logo.png", expected: "assets/images/[name]-[hash]-1718000000123.png"},
		{name: "upper case png keeps extension", asset: "logo.PNG", expected: "assets/images/[name]-[hash]-1718000000123.PNG"},
		{name: "gif", asset: "spinner.gif", expected: "assets/images/[name]-[hash]-1718000000123.gif"},
		{name: "jpg", asset: "photo.jpg", expected: "assets/images/[name]-[hash]-1718000000123.jpg"},
		{name: "jpeg mixed case", asset: "photo.JpEg", expected: "assets/images/[name]-[hash]-1718000000123.JpEg"},
		{name: "svg", asset: "icons/arrow.svg", expected: "assets/images/[name]-[hash]-1718000000123.svg"},
		{name: "css", asset: "main.css", expected: "assets/css/[name]-[hash]-1718000000123.css"},
		{name: "css upper case", asset: "MAIN.CSS", expected: "assets/css/[name]-[hash]-1718000000123.CSS"},
		{name: "javascript", asset: "app.js", expected: "assets/[name]-[hash]-1718000000123.js"},
		{name: "json", asset: "data.json", expected: "assets/[name]-[hash]-1718000000123.json"},
		{name: "font", asset: "inter.woff2", expected: "assets/[name]-[hash]-1718000000123.woff2"},
		{name: "empty", asset: "", expected: "assets/[name]-[hash]-1718000000123"},
		{name: "no extension", asset: "png", expected: "assets/[name]-[hash]-1718000000123"},
		{name: "extension only", asset: ".png", expected: "assets/images/[name]-[hash]-1718000000123.png"},
		{name: "extension lookalike", asset: "logo.png.map", expected: "assets/[name]-[hash]-1718000000123.map"},
		{name: "scss is not css", asset: "theme.scss", expected: "assets/[name]-[hash]-1718000000123.scss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RouteAsset(AssetCandidate{Name: tt.asset}, testContext())
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestRouteAsset_embedsTimestamp(t *testing.T) {
	for _, ts := range []int64{0, 1, 42, 1718000000123, -5} {
		ctx := BuildContext{Mode: ModeDevelopment, Timestamp: ts}
		for _, name := range []string{"a.png", "b.css", "c.js", ""} {
			got := RouteAsset(AssetCandidate{Name: name}, ctx)
			require.Contains(t, got, "-"+strconv.FormatInt(ts, 10))
		}
	}
}

func TestRouteAsset_deterministic(t *testing.T) {
	ctx := testContext()
	for _, name := range []string{"logo.PNG", "main.css", "app.js", ""} {
		first := RouteAsset(AssetCandidate{Name: name}, ctx)
		second := RouteAsset(AssetCandidate{Name: name}, ctx)
		require.Equal(t, first, second)
	}
}

func TestAssetCandidate_Kind(t *testing.T) {
	require.Equal(t, KindImage, AssetCandidate{Name: "a.SVG"}.Kind())
	require.Equal(t, KindStylesheet, AssetCandidate{Name: "a.css"}.Kind())
	require.Equal(t, KindOther, AssetCandidate{Name: "a.ttf"}.Kind())
	require.Equal(t, KindOther, AssetCandidate{}.Kind())
}

func TestRouteScript(t *testing.T) {
	require.Equal(t, "assets/js/[name]-[hash]-1718000000123.js", RouteScript(testContext()))
}

func TestResolve(t *testing.T) {
	tmpl := RouteAsset(AssetCandidate{Name: "logo.PNG"}, testContext())
	require.Equal(t, "assets/images/logo-3xYz9Abc-1718000000123.PNG", Resolve(tmpl, "logo", "3xYz9Abc"))
}

func TestNewBuildContext(t *testing.T) {
	now := time.UnixMilli(1718000000123)
	ctx := NewBuildContext(ModeProduction, now)
	require.Equal(t, int64(1718000000123), ctx.Timestamp)
	require.True(t, ctx.Mode.IsProduction())
}

func TestParseMode(t *testing.T) {
	require.Equal(t, ModeDevelopment, ParseMode(""))
	require.Equal(t, ModeProduction, ParseMode("production"))
	require.Equal(t, Mode("staging"), ParseMode(" staging "))
	require.False(t, ParseMode("staging").IsProduction())
}
