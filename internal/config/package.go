package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// PackageInfo is the subset of package.json used for the output banner.
type PackageInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Author    any    `json:"author"`
	Copyright string `json:"copyright"`
}

// ReadPackage reads package.json. A missing file returns nil without error.
func ReadPackage(path string) (*PackageInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read package file: %w", err)
	}

	var pkg PackageInfo
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package file: %w", err)
	}
	return &pkg, nil
}

// AuthorName flattens the string and {"name": ...} forms of author.
func (p *PackageInfo) AuthorName() string {
	switch v := p.Author.(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	}
	return ""
}

// Banner renders the comment prepended to every emitted script.
func (p *PackageInfo) Banner() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("/**\n")
	fmt.Fprintf(&b, " * name: %s\n", p.Name)
	fmt.Fprintf(&b, " * version: v%s\n", p.Version)
	fmt.Fprintf(&b, " * author: %s\n", p.AuthorName())
	fmt.Fprintf(&b, " * copyright: %s\n", p.Copyright)
	b.WriteString(" */")
	return b.String()
}
