package extractor

import (
	"fmt"
	"regexp"
	"sync"
)

var patterns sync.Map // string -> *regexp.Regexp

func compile(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}

// findRegex returns the first capture group when the pattern has one, else the full match.
func findRegex(body, pattern string) (string, error) {
	re, err := compile(pattern)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	match := re.FindStringSubmatch(body)
	if match == nil {
		return "", fmt.Errorf("%w: regex %s", ErrNotFound, pattern)
	}
	if len(match) > 1 {
		return match[1], nil
	}
	return match[0], nil
}
