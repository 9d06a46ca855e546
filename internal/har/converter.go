package har

import (
	"errors"
	"net/url"
	"slices"
	"strings"
)

// ErrNoLog is returned for archives without a log.
var ErrNoLog = errors.New("HAR is nil or has nil Log")

// Step is one recorded request, ready to be replayed.
type Step struct {
	Name   string
	Method string
	URL    string
	// Status is the status code the browser observed, kept for reference.
	Status int
}

var staticExtensions = []string{
	".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg",
	".woff", ".woff2", ".ttf", ".eot", ".ico", ".map",
}

// Convert turns HAR entries into steps in recording order, applying the filters in opts.
func Convert(har *HAR, opts ConvertOptions) ([]Step, error) {
	if har == nil || har.Log == nil {
		return nil, ErrNoLog
	}

	var steps []Step
	for _, entry := range har.Log.Entries {
		if entry == nil || entry.Request == nil {
			continue
		}
		parsed, err := url.Parse(entry.Request.URL)
		if err != nil || parsed.Host == "" {
			continue
		}
		if !shouldInclude(entry.Request, parsed, opts) {
			continue
		}
		steps = append(steps, entryToStep(entry, parsed))
	}
	return steps, nil
}

func shouldInclude(req *Request, parsed *url.URL, opts ConvertOptions) bool {
	if len(opts.IncludeHosts) > 0 && !slices.Contains(opts.IncludeHosts, parsed.Host) {
		return false
	}
	if slices.Contains(opts.ExcludeHosts, parsed.Host) {
		return false
	}
	if len(opts.IncludeMethods) > 0 && !slices.ContainsFunc(opts.IncludeMethods, func(m string) bool {
		return strings.EqualFold(req.Method, m)
	}) {
		return false
	}
	if opts.ExcludeStatic && isStaticAsset(parsed.Path) {
		return false
	}
	return true
}

// entryToStep keeps the method, URL and observed status. Recorded headers, cookies and
// bodies are not replayed: HTTP steps only fetch their URL.
func entryToStep(entry *Entry, parsed *url.URL) Step {
	req := entry.Request
	step := Step{
		Name:   strings.ToUpper(req.Method) + " " + nameFromPath(parsed.Path),
		Method: strings.ToUpper(req.Method),
		URL:    req.URL,
	}
	if entry.Response != nil {
		step.Status = entry.Response.Status
	}
	return step
}

func nameFromPath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func isStaticAsset(path string) bool {
	lower := strings.ToLower(path)
	return slices.ContainsFunc(staticExtensions, func(ext string) bool {
		return strings.HasSuffix(lower, ext)
	})
}
