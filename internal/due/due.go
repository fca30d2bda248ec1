// Package due parses user-supplied due dates, both plain dates and natural
// language ("tomorrow", "next friday").
package due

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var parser = func() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}()

// Parse interprets input as a due date relative to base. Plain ISO dates are
// tried first, then natural-language phrases.
func Parse(input string, base time.Time) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("due date is empty")
	}

	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, input, base.Location()); err == nil {
			return t, nil
		}
	}

	r, err := parser.Parse(input, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse due date %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized due date %q", input)
	}
	return r.Time, nil
}
