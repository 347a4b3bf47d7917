package htmlinject

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SpritePrefix is prepended to every symbol id, so icons/arrow.svg is
// referenced as <use href="#icon-arrow">.
const SpritePrefix = "icon-"

// SVGSprite combines every *.svg file directly inside dir into one hidden
// sprite of <symbol> elements. A missing directory yields an empty sprite.
func SVGSprite(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read svg directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".svg") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)

	if len(names) == 0 {
		return "", nil
	}

	sprite := &html.Node{
		Type:      html.ElementNode,
		Data:      "svg",
		Namespace: "svg",
		Attr: []html.Attribute{
			{Key: "xmlns", Val: "http://www.w3.org/2000/svg"},
			{Key: "aria-hidden", Val: "true"},
			{Key: "style", Val: "position:absolute;width:0;height:0;overflow:hidden"},
		},
	}

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		symbol, err := toSymbol(SpritePrefix+strings.TrimSuffix(name, filepath.Ext(name)), data)
		if err != nil {
			return "", fmt.Errorf("failed to convert %s: %w", name, err)
		}
		sprite.AppendChild(symbol)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, sprite); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toSymbol moves the children of the first <svg> element into a <symbol>
// carrying the id and the original viewBox.
func toSymbol(id string, data []byte) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(data), context)
	if err != nil {
		return nil, err
	}

	var svg *html.Node
	for _, n := range nodes {
		if svg = findSVG(n); svg != nil {
			break
		}
	}
	if svg == nil {
		return nil, errors.New("no svg element")
	}

	symbol := &html.Node{
		Type:      html.ElementNode,
		Data:      "symbol",
		Namespace: "svg",
		Attr:      []html.Attribute{{Key: "id", Val: id}},
	}
	for _, attr := range svg.Attr {
		if attr.Key == "viewBox" {
			symbol.Attr = append(symbol.Attr, attr)
		}
	}

	for c := svg.FirstChild; c != nil; {
		next := c.NextSibling
		svg.RemoveChild(c)
		symbol.AppendChild(c)
		c = next
	}

	return symbol, nil
}

func findSVG(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "svg" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSVG(c); found != nil {
			return found
		}
	}
	return nil
}
