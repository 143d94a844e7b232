package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/postlinehq/postline/internal/platform"
	"github.com/postlinehq/postline/internal/platform/bluesky"
	"github.com/postlinehq/postline/internal/platform/facebook"
	"github.com/postlinehq/postline/internal/platform/instagram"
	"github.com/postlinehq/postline/internal/platform/mastodon"
	"github.com/postlinehq/postline/internal/platform/twitter"
)

// constructors maps provider names to environment-configured adapters. Call
// sites hold only the platform.Platform interface.
var constructors = map[string]func() (platform.Platform, error){
	"facebook": func() (platform.Platform, error) {
		return facebook.New(facebook.FromEnv())
	},
	"instagram": func() (platform.Platform, error) {
		return instagram.New(instagram.FromEnv())
	},
	"mastodon": func() (platform.Platform, error) {
		return mastodon.New(mastodon.FromEnv())
	},
	"twitter": func() (platform.Platform, error) {
		return twitter.New(twitter.FromEnv())
	},
	"bluesky": func() (platform.Platform, error) {
		return bluesky.New(bluesky.FromEnv())
	},
}

func openPlatform(name string) (platform.Platform, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, fmt.Errorf("--platform is required (one of %s)", strings.Join(providerNames(), ", "))
	}
	constructor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unsupported platform %q (one of %s)", name, strings.Join(providerNames(), ", "))
	}
	return constructor()
}

func providerNames() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
