package roles

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is a GitLab access level. The enumeration is closed: only the five
// standard tiers are legal (planner/minimal access are intentionally
// unsupported).
type Level int

const (
	Guest      Level = 10
	Reporter   Level = 20
	Developer  Level = 30
	Maintainer Level = 40
	Owner      Level = 50
)

var levelNames = map[Level]string{
	Guest:      "guest",
	Reporter:   "reporter",
	Developer:  "developer",
	Maintainer: "maintainer",
	Owner:      "owner",
}

var namesToLevel = map[string]Level{
	"guest":      Guest,
	"reporter":   Reporter,
	"developer":  Developer,
	"maintainer": Maintainer,
	"owner":      Owner,
}

// String returns the lowercase role name, or the numeric form for an
// out-of-range value.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return strconv.Itoa(int(l))
}

// Valid reports whether l is one of the five legal levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// ParseLevel accepts either a role name ("developer") or its numeric level
// ("30") and returns the typed Level. Anything outside the five legal values
// is rejected, never clamped.
func ParseLevel(s string) (Level, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		l := Level(n)
		if !l.Valid() {
			return 0, fmt.Errorf("invalid role level %d: allowed levels are 10, 20, 30, 40, 50", n)
		}
		return l, nil
	}
	if l, ok := namesToLevel[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("invalid role %q: allowed roles are guest, reporter, developer, maintainer, owner", s)
}
