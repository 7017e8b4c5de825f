package config

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// SiteProfile describes per-site CSS selectors for the pattern strategy.
//
// Example file:
//
//	sites:
//	  - name: example
//	    hosts: [news.example.com]
//	    title: ["h1.headline"]
//	    content: ["div#article-body"]
//	    date: ["span.published[data-date]"]
type SiteProfile struct {
	Name    string   `yaml:"name"`
	Hosts   []string `yaml:"hosts"`
	Title   []string `yaml:"title"`
	Content []string `yaml:"content"`
	Date    []string `yaml:"date"`
	Images  []string `yaml:"images"`
	Videos  []string `yaml:"videos"`
}

type siteFile struct {
	Sites []SiteProfile `yaml:"sites"`
}

// LoadSiteProfiles reads extra site profiles from a YAML file.
// An empty path yields no profiles and no error.
func LoadSiteProfiles(path string) ([]SiteProfile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read sites file: %w", err)
	}
	return ParseSiteProfiles(data)
}

// ParseSiteProfiles decodes and checks a site profile document.
func ParseSiteProfiles(data []byte) ([]SiteProfile, error) {
	var f siteFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse sites file: %w", err)
	}
	for i := range f.Sites {
		p := &f.Sites[i]
		if p.Name == "" {
			return nil, fmt.Errorf("config: site #%d: missing name", i+1)
		}
		if len(p.Hosts) == 0 {
			return nil, fmt.Errorf("config: site %q: no hosts", p.Name)
		}
		if len(p.Title) == 0 && len(p.Content) == 0 {
			return nil, fmt.Errorf("config: site %q: needs title or content selectors", p.Name)
		}
		for j, h := range p.Hosts {
			p.Hosts[j] = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h)), "www.")
		}
	}
	return f.Sites, nil
}
