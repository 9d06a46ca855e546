// Package scenariofile loads declarative scenarios from YAML or JSON and registers them
// with a granita.Granita.
//
// A file holds named scenarios, each an ordered list of steps:
//
//	scenarios:
//	  - name: login
//	    steps:
//	      - url: "{{base}}/session?user={{user}}"
//	        extract:
//	          - variable: token
//	            json_path: $.token
//	      - url: "{{base}}/me?token={{token}}"
//	        expect:
//	          body_contains: alice
//	      - protocol: sse
//	        url: "{{base}}/events"
//	        headers:
//	          Authorization: "Bearer {{token}}"
//
// HTTP steps fetch their url with GET and carry nothing else: a method other than GET or
// any headers on an http step is rejected. Headers are sent on websocket and sse steps.
package scenariofile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/torosent/granita/internal/extractor"
	"github.com/torosent/granita/internal/har"
	"github.com/torosent/granita/request"
)

// Protocol names the request variant a step sends.
type Protocol string

const (
	ProtocolHTTP      Protocol = "http"
	ProtocolWebSocket Protocol = "websocket"
	ProtocolSSE       Protocol = "sse"
	ProtocolGRPC      Protocol = "grpc"
)

// ErrInvalidFile wraps every structural problem found while loading.
var ErrInvalidFile = errors.New("invalid scenario file")

type File struct {
	Scenarios []Scenario `mapstructure:"scenarios"`
}

type Scenario struct {
	Name  string `mapstructure:"name"`
	Steps []Step `mapstructure:"steps"`
}

// Step is one request plus what to check and keep from its response. URL, header,
// metadata, message and payload values may contain {{placeholders}}.
type Step struct {
	Name     string            `mapstructure:"name"`
	Protocol Protocol          `mapstructure:"protocol"`
	Method   string            `mapstructure:"method"`
	URL      string            `mapstructure:"url"`
	Headers  map[string]string `mapstructure:"headers"`

	// WebSocket
	Messages []string `mapstructure:"messages"`

	// SSE
	MaxEvents int `mapstructure:"max_events"`

	// gRPC; URL is the target address.
	ProtoFile string            `mapstructure:"proto_file"`
	Service   string            `mapstructure:"service"`
	RPC       string            `mapstructure:"rpc"`
	Message   string            `mapstructure:"message"`
	Metadata  map[string]string `mapstructure:"metadata"`

	Expect  Expect        `mapstructure:"expect"`
	Extract []ExtractRule `mapstructure:"extract"`
}

// Expect lists the checks applied to a step's response text.
type Expect struct {
	BodyContains string            `mapstructure:"body_contains"`
	JSON         []JSONExpectation `mapstructure:"json"`
	Code         string            `mapstructure:"code"` // gRPC status name, e.g. OK
}

// JSONExpectation compares the value at Path with Equals. Paths are case sensitive, so
// they are given as values rather than map keys.
type JSONExpectation struct {
	Path   string `mapstructure:"path"`
	Equals string `mapstructure:"equals"`
}

type ExtractRule struct {
	Variable string `mapstructure:"variable"`
	JSONPath string `mapstructure:"json_path"`
	Regex    string `mapstructure:"regex"`
}

func (r ExtractRule) extractor() extractor.Extractor {
	return extractor.Extractor{Variable: r.Variable, JSONPath: r.JSONPath, Regex: r.Regex}
}

// Load reads the scenario file at path. The format follows the extension, and .har
// recordings go through LoadHAR with default options. Relative proto_file paths resolve
// against the file's directory.
func Load(path string) (*File, error) {
	if strings.EqualFold(filepath.Ext(path), ".har") {
		return LoadHAR(path, har.DefaultOptions())
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	f, err := decode(v)
	if err != nil {
		return nil, err
	}
	f.resolveProtoFiles(filepath.Dir(path))
	return f, nil
}

// Parse reads scenarios from r in the given format ("yaml" or "json").
func Parse(r io.Reader, format string) (*File, error) {
	v := viper.New()
	v.SetConfigType(strings.ToLower(strings.TrimSpace(format)))
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*File, error) {
	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) resolveProtoFiles(dir string) {
	for i := range f.Scenarios {
		for j := range f.Scenarios[i].Steps {
			step := &f.Scenarios[i].Steps[j]
			if step.ProtoFile != "" && !filepath.IsAbs(step.ProtoFile) && !strings.Contains(step.ProtoFile, "{{") {
				step.ProtoFile = filepath.Join(dir, step.ProtoFile)
			}
		}
	}
}

// Validate checks structure only. URLs are validated after placeholder expansion, when
// each step's request is built.
func (f *File) Validate() error {
	if len(f.Scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios defined", ErrInvalidFile)
	}
	for i := range f.Scenarios {
		sc := &f.Scenarios[i]
		sc.Name = strings.TrimSpace(sc.Name)
		if sc.Name == "" {
			return fmt.Errorf("%w: scenario %d: name is required", ErrInvalidFile, i)
		}
		if len(sc.Steps) == 0 {
			return fmt.Errorf("%w: scenario %s: at least one step is required", ErrInvalidFile, sc.Name)
		}
		for j := range sc.Steps {
			if err := sc.Steps[j].normalize(); err != nil {
				return fmt.Errorf("%w: scenario %s: step %s: %v", ErrInvalidFile, sc.Name, sc.Steps[j].label(j), err)
			}
		}
	}
	return nil
}

func (s *Step) normalize() error {
	s.Protocol = Protocol(strings.ToLower(strings.TrimSpace(string(s.Protocol))))
	if s.Protocol == "" {
		s.Protocol = ProtocolHTTP
	}
	if strings.TrimSpace(s.URL) == "" {
		return errors.New("url is required")
	}

	switch s.Protocol {
	case ProtocolHTTP:
		if s.Method == "" {
			s.Method = string(request.MethodGet)
		}
		method, err := request.ParseMethod(s.Method)
		if err != nil {
			return err
		}
		if method != request.MethodGet {
			return fmt.Errorf("method %s is not supported on http steps, which only fetch with GET", method)
		}
		s.Method = string(method)
		if len(s.Headers) > 0 {
			return errors.New("headers are not supported on http steps, which only fetch the url")
		}
	case ProtocolWebSocket:
	case ProtocolSSE:
		if s.MaxEvents < 0 {
			return errors.New("max_events must be >= 0")
		}
		if s.MaxEvents == 0 {
			s.MaxEvents = 1
		}
	case ProtocolGRPC:
		if s.ProtoFile == "" || s.Service == "" || s.RPC == "" {
			return errors.New("proto_file, service and rpc are required for grpc")
		}
	default:
		return fmt.Errorf("unknown protocol %q", s.Protocol)
	}

	if s.Expect.Code != "" && s.Protocol != ProtocolGRPC {
		return errors.New("expect.code applies to grpc steps only")
	}
	for _, je := range s.Expect.JSON {
		if strings.TrimSpace(je.Path) == "" {
			return errors.New("expect.json entries need a path")
		}
	}
	for _, rule := range s.Extract {
		if err := rule.extractor().Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s Step) label(index int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("#%d", index+1)
}
