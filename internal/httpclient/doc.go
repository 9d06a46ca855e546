// Package httpclient provides the production HTTP transport for granita.
//
// [NewClient] returns an *http.Client tuned for repeated requests against the same
// hosts (connection reuse, bounded idle pools). [Fetcher] wraps such a client and
// implements [github.com/torosent/granita/transport.Fetcher]:
//
//	f := httpclient.NewFetcher(30 * time.Second)
//	body, err := f.Fetch(ctx, "http://localhost:8080/health")
//
// Fetch issues a GET, accepts any status code and returns the body as text. Failures
// are reported as *transport.Error values:
//   - URI: the URL cannot be parsed, has no host, or is not http/https
//   - connect: dialing or the round trip failed
//   - protocol: the body could not be read
//   - decode: the body is not valid UTF-8
package httpclient
