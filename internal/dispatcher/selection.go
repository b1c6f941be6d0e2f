package dispatcher

import (
	"fmt"
	"strconv"
	"strings"
)

// ExitSentinel is the input that ends the session.
const ExitSentinel = "exit"

// Selection is parsed user input: either the exit sentinel or an index.
type Selection struct {
	Exit  bool
	Index int
}

// Index returns a selection of the table entry at i.
func Index(i int) Selection {
	return Selection{Index: i}
}

// ExitSelection returns the exit sentinel selection.
func ExitSelection() Selection {
	return Selection{Exit: true}
}

func (s Selection) String() string {
	if s.Exit {
		return ExitSentinel
	}
	return strconv.Itoa(s.Index)
}

// ParseSelection parses one line of user input. Surrounding whitespace is
// ignored and the exit sentinel is matched case-insensitively.
func ParseSelection(text string) (Selection, error) {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, ExitSentinel) {
		return ExitSelection(), nil
	}
	i, err := strconv.Atoi(text)
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %q", ErrInvalidSelection, text)
	}
	return Index(i), nil
}
