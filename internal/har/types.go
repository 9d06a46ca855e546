package har

// HAR is an HTTP Archive (HAR 1.x). Only the fields needed to replay requests are
// decoded; headers, cookies, bodies and timings are ignored.
type HAR struct {
	Log *Log `json:"log"`
}

// Log contains the HTTP archive data
type Log struct {
	Version string   `json:"version"`
	Creator *Creator `json:"creator"`
	Entries []*Entry `json:"entries"`
}

// Creator describes the application that created the archive
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Entry describes a single HTTP request/response pair
type Entry struct {
	StartedDateTime string    `json:"startedDateTime"`
	Request         *Request  `json:"request"`
	Response        *Response `json:"response"`
}

// Request describes an HTTP request
type Request struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type Response struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
}
