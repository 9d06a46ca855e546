package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ErrorName labels err by its root cause for reports and the errors table. Context
// deadlines and URL errors get fixed labels. Plain errors.New and fmt.Errorf values
// are all "Error". Any other root cause is named after its type, so *net.OpError
// becomes "Op Error (net)".
func ErrorName(err error) string {
	if err == nil {
		return "Unknown error"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Context deadline exceeded"
	}
	if errors.Is(err, context.Canceled) {
		return "Context canceled"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return "Request URL error"
	}
	return typeLabel(fmt.Sprintf("%T", rootCause(err)))
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeLabel(typeName string) string {
	name := strings.TrimPrefix(typeName, "*")
	if i := strings.LastIndex(name, "/"); i != -1 {
		name = name[i+1:]
	}
	pkg, short, ok := strings.Cut(name, ".")
	if !ok {
		short, pkg = pkg, ""
	}
	if pkg == "errors" || pkg == "fmt" {
		return "Error"
	}
	pretty := humanize(short)
	if pkg == "" || pkg == "main" {
		return pretty
	}
	return fmt.Sprintf("%s (%s)", pretty, pkg)
}

// humanize splits a Go identifier into words: HTTPStatusError -> HTTP Status Error.
func humanize(name string) string {
	runes := []rune(name)
	var words []string
	start := 0
	flush := func(end int) {
		if end <= start {
			return
		}
		word := string(runes[start:end])
		if !isAllUpper(word) {
			word = capitalize(word)
		}
		words = append(words, word)
		start = end
	}
	for i := 1; i < len(runes); i++ {
		r, prev := runes[i], runes[i-1]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower)):
			flush(i)
		case unicode.IsDigit(r) && !unicode.IsDigit(prev):
			flush(i)
		}
	}
	flush(len(runes))
	if len(words) == 0 {
		return name
	}
	return strings.Join(words, " ")
}

func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
