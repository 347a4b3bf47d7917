package config

// Settings are the effective build switches for a mode.
type Settings struct {
	Minify               bool
	Sourcemap            bool
	ReportCompressedSize bool
	EmptyOutDir          bool
	Manifest             bool
	// Versioned writes version.json and tags the page with the build timestamp.
	Versioned bool
	// DropConsole marks noisy console calls as pure and drops debugger statements.
	DropConsole bool
	// DevServer enables the proxy and live reload.
	DevServer bool
}

// Settings derives the build switches from the mode, then applies overrides.
func (c *Config) Settings() Settings {
	prod := c.BuildMode().IsProduction()

	s := Settings{
		Minify:               prod,
		Sourcemap:            !prod,
		ReportCompressedSize: !prod,
		EmptyOutDir:          true,
		Manifest:             c.Build.Manifest,
		Versioned:            prod,
		DropConsole:          prod,
		DevServer:            !prod,
	}

	if c.Build.Minify != nil {
		s.Minify = *c.Build.Minify
	}
	if c.Build.Sourcemap != nil {
		s.Sourcemap = *c.Build.Sourcemap
	}
	if c.Build.ReportCompressedSize != nil {
		s.ReportCompressedSize = *c.Build.ReportCompressedSize
	}
	if c.Build.EmptyOutDir != nil {
		s.EmptyOutDir = *c.Build.EmptyOutDir
	}

	return s
}

// ProxyRules returns the configured proxy rules plus, outside production, the
// default /api/ rule when the API URL is known and no /api/ rule was configured.
func (c *Config) ProxyRules() map[string]ProxyRule {
	rules := make(map[string]ProxyRule, len(c.Proxy)+1)
	for prefix, rule := range c.Proxy {
		rules[prefix] = rule
	}

	if _, ok := rules["/api/"]; !ok && !c.BuildMode().IsProduction() {
		if api := c.Flags().APIURL; api != "" {
			rules["/api/"] = ProxyRule{
				Target:       api,
				ChangeOrigin: true,
				Secure:       false,
				RewriteFrom:  "^/api",
				RewriteTo:    "",
			}
		}
	}

	return rules
}
