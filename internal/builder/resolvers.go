package builder

// declResolver is a deferred registration retried at the registry's
// resolution checkpoints. The retry closure re-runs the original
// registration attempt against the now-larger catalog.
type declResolver struct {
	desc  string
	retry func() error
}

func (r *declResolver) Resolve() error {
	return r.retry()
}

func (r *declResolver) Describe() string {
	return r.desc
}

func newCacheRefResolver(a *Assistant, referenced string) *declResolver {
	return &declResolver{
		desc: "cache-ref from " + a.Namespace() + " to " + referenced,
		retry: func() error {
			_, err := a.UseCacheRef(referenced)
			return err
		},
	}
}

func newResultMapResolver(b *MapperBuilder, decl ResultMapDecl) *declResolver {
	return &declResolver{
		desc: "result map " + decl.ID + " extends " + decl.Extends,
		retry: func() error {
			_, err := b.buildResultMap(decl)
			return err
		},
	}
}

func newStatementResolver(b *MapperBuilder, decl StatementDecl) *declResolver {
	return &declResolver{
		desc: "statement " + decl.ID,
		retry: func() error {
			return b.buildStatement(decl)
		},
	}
}
