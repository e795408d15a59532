package types

import (
	"fmt"
	"regexp"
	"strconv"
)

// titlePattern matches "<repo>#<number>:". The repo may not contain '#',
// so the first "#<digits>:" always ends the repo part even when the issue
// title itself contains the same shape.
var titlePattern = regexp.MustCompile(`^([^#]+)#(\d+):`)

// FormatTitle renders the task title written for an issue of repo.
func FormatTitle(repo string, number int, title string) string {
	return fmt.Sprintf("%s#%d: %s", repo, number, title)
}

// ParseTitle extracts the repo and issue number from a task title.
// ok is false when the title is not one written by FormatTitle.
func ParseTitle(title string) (repo string, number int, ok bool) {
	m := titlePattern.FindStringSubmatch(title)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}
