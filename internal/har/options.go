package har

// ConvertOptions controls which HAR entries become steps.
type ConvertOptions struct {
	// IncludeHosts specifies which hosts to include (empty = all hosts)
	IncludeHosts []string
	// ExcludeHosts specifies which hosts to exclude
	ExcludeHosts []string
	// IncludeMethods specifies which HTTP methods to include (empty = all methods)
	IncludeMethods []string
	// ExcludeStatic drops static assets (.js, .css, images, fonts)
	ExcludeStatic bool
}

// DefaultOptions keeps GET requests only, since replayed HTTP steps are fetches.
func DefaultOptions() ConvertOptions {
	return ConvertOptions{
		IncludeMethods: []string{"GET"},
		ExcludeStatic:  true,
	}
}
