package render

import (
	"context"
	"strings"

	"github.com/goliatone/go-navigation/internal/sections"
)

// PageContext describes the page a navigation fragment is rendered
// into. ActiveSectionRef names the section the host considers current;
// Path is the request path for resolvers that match by URL.
type PageContext struct {
	ActiveSectionRef string
	Path             string
}

// Resolver maps a page context onto the ref of the active section. An
// empty ref means no section is active.
type Resolver interface {
	Resolve(ctx context.Context, page PageContext) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, page PageContext) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, page PageContext) (string, error) {
	return f(ctx, page)
}

// IdentityResolver returns the page context's active ref unchanged. It
// is the default resolver: the host already knows which section is
// current and the renderer does not second-guess it.
type IdentityResolver struct{}

func (IdentityResolver) Resolve(_ context.Context, page PageContext) (string, error) {
	return page.ActiveSectionRef, nil
}

// PathResolver matches the page path against section URLs. An explicit
// ActiveSectionRef on the page context short-circuits the lookup. Exact
// matches win; with MatchPrefix set, the longest section URL that
// prefixes the page path on a segment boundary wins among the rest.
// Query strings and fragments never participate in comparison, and the
// root path only ever matches exactly.
type PathResolver struct {
	Menu *sections.ResolvedMenu

	// MatchPrefix enables longest-prefix fallback for hierarchical URLs.
	MatchPrefix bool
	// IgnoreTrailingSlash treats "/docs" and "/docs/" as the same path.
	IgnoreTrailingSlash bool
	// FoldCase compares paths case-insensitively.
	FoldCase bool
}

func (r PathResolver) Resolve(_ context.Context, page PageContext) (string, error) {
	if page.ActiveSectionRef != "" {
		return page.ActiveSectionRef, nil
	}
	if r.Menu == nil {
		return "", nil
	}

	pagePath := r.comparable(page.Path)
	if pagePath == "" {
		return "", nil
	}

	flat := BuildMenuTree(r.Menu, "").Flatten()
	for _, node := range flat {
		if node.URL == "" {
			continue
		}
		if r.comparable(node.URL) == pagePath {
			return node.Ref, nil
		}
	}

	if !r.MatchPrefix {
		return "", nil
	}

	bestRef := ""
	bestLen := 0
	for _, node := range flat {
		if node.URL == "" {
			continue
		}
		candidate := r.comparable(node.URL)
		if candidate == "" || candidate == "/" {
			continue
		}
		probe := candidate
		if !strings.HasSuffix(probe, "/") {
			probe += "/"
		}
		if strings.HasPrefix(pagePath, probe) && len(candidate) > bestLen {
			bestRef = node.Ref
			bestLen = len(candidate)
		}
	}
	return bestRef, nil
}

// comparable reduces a URL or request path to the form used for
// matching: path component only, no query, no fragment, no host.
func (r PathResolver) comparable(raw string) string {
	p := raw
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if i := strings.Index(p, "://"); i >= 0 {
		rest := p[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			p = rest[j:]
		} else {
			p = "/"
		}
	}
	if r.IgnoreTrailingSlash && len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if r.FoldCase {
		p = strings.ToLower(p)
	}
	return p
}
