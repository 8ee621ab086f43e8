package sections

import "context"

// ResolveRequest carries the context required for URL resolvers to build links.
type ResolveRequest struct {
	MenuCode string
	Section  *Section
	Locale   string
}

// URLResolver allows callers to override how section URLs are generated.
type URLResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (string, error)
}

type defaultURLResolver struct {
	service *service
}

func (r *defaultURLResolver) Resolve(ctx context.Context, req ResolveRequest) (string, error) {
	if req.Section == nil {
		return "", nil
	}
	return r.service.resolveURLForTarget(ctx, req.Section.Target, req.Locale)
}

// WithURLResolver overrides the default URL resolver used by the section service.
func WithURLResolver(resolver URLResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.urlResolver = resolver
		}
	}
}
