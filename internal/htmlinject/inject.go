package htmlinject

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Data is exposed to the page template, e.g. {{ .CdnPath }}.
type Data struct {
	CdnPath string
	APIPath string
	Mode    string
	Version string
}

// Options describe what gets injected into the rendered page.
type Options struct {
	// HTMLID is the id of the mount element prepended to <body>.
	HTMLID string
	Script string
	// Classic emits a plain script tag instead of an ES module.
	Classic bool
	Styles  []string
	Preload []string
	// Sprite is SVG markup prepended to <body>.
	Sprite string
	// Version adds a <meta name="version"> tag when set.
	Version string
	// LiveReload is an event stream URL; when set a reload script is appended.
	LiveReload string
	Data       Data
}

var ErrNoTemplate = errors.New("page template is empty")

// Render executes the page template and injects tags for the built assets.
func Render(page []byte, opts Options) ([]byte, error) {
	if len(bytes.TrimSpace(page)) == 0 {
		return nil, ErrNoTemplate
	}

	tmpl, err := template.New("page").Option("missingkey=zero").Parse(string(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, opts.Data); err != nil {
		return nil, fmt.Errorf("failed to render page template: %w", err)
	}

	doc, err := html.Parse(&rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	head := findElement(doc, atom.Head)
	body := findElement(doc, atom.Body)
	if head == nil || body == nil {
		return nil, errors.New("page has no head or body")
	}

	if opts.Version != "" {
		head.AppendChild(element(atom.Meta, "name", "version", "content", opts.Version))
	}
	for _, href := range opts.Styles {
		head.AppendChild(element(atom.Link, "rel", "stylesheet", "href", href))
	}
	for _, href := range opts.Preload {
		head.AppendChild(element(atom.Link, "rel", "modulepreload", "href", href))
	}

	if opts.HTMLID != "" && findByID(doc, opts.HTMLID) == nil {
		prepend(body, element(atom.Div, "id", opts.HTMLID))
	}

	if opts.Sprite != "" {
		nodes, err := html.ParseFragment(strings.NewReader(opts.Sprite), body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sprite: %w", err)
		}
		for i := len(nodes) - 1; i >= 0; i-- {
			prepend(body, nodes[i])
		}
	}

	if opts.Script != "" {
		if opts.Classic {
			body.AppendChild(element(atom.Script, "src", opts.Script))
		} else {
			body.AppendChild(element(atom.Script, "type", "module", "src", opts.Script))
		}
	}

	if opts.LiveReload != "" {
		script := element(atom.Script)
		script.AppendChild(&html.Node{
			Type: html.TextNode,
			Data: fmt.Sprintf("new EventSource(%q).addEventListener(\"reload\",function(){location.reload()});", opts.LiveReload),
		})
		body.AppendChild(script)
	}

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return out.Bytes(), nil
}

// element builds an element node from alternating attribute keys and values.
func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func prepend(parent, child *html.Node) {
	if parent.FirstChild == nil {
		parent.AppendChild(child)
		return
	}
	parent.InsertBefore(child, parent.FirstChild)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && attr.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
