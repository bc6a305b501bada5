package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Selections maps a modifier group name to the choice made for that group.
type Selections map[string]Selection

// Selection is the choice for one modifier group: exactly one option name
// for a single-select group, or a set of option names for a multi-select
// group. The wire shape stays the storefront's — a bare string for single,
// an array for multi.
type Selection struct {
	Option  string
	Options []string
}

func SingleSelect(option string) Selection {
	return Selection{Option: option}
}

func MultiSelect(options ...string) Selection {
	if options == nil {
		options = []string{}
	}
	return Selection{Options: options}
}

// Multi reports whether the selection carries a set of options.
func (s Selection) Multi() bool {
	return s.Options != nil
}

// Names returns the selected option names regardless of selection kind.
func (s Selection) Names() []string {
	if s.Multi() {
		return s.Options
	}
	if s.Option == "" {
		return nil
	}
	return []string{s.Option}
}

func (s Selection) MarshalJSON() ([]byte, error) {
	if s.Multi() {
		return json.Marshal(s.Options)
	}
	return json.Marshal(s.Option)
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = Selection{Option: single}
		return nil
	}
	var multi []string
	if err := json.Unmarshal(data, &multi); err == nil {
		if multi == nil {
			multi = []string{}
		}
		*s = Selection{Options: multi}
		return nil
	}
	return fmt.Errorf("selection must be a string or an array of strings, got %s", string(data))
}

// Canonical serializes the selections deterministically: group names sorted,
// option names within a group sorted, empty selections skipped. Two
// equivalent selections built in different insertion order produce the same
// string, so it is safe to use in cart keys.
func (m Selections) Canonical() string {
	if len(m) == 0 {
		return ""
	}
	groups := make([]string, 0, len(m))
	for name := range m {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	var b strings.Builder
	for _, group := range groups {
		names := append([]string(nil), m[group].Names()...)
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(group)
		b.WriteByte('=')
		b.WriteString(strings.Join(names, ","))
	}
	return b.String()
}

// Clone deep-copies the selections so order snapshots cannot alias cart state.
func (m Selections) Clone() Selections {
	if m == nil {
		return nil
	}
	out := make(Selections, len(m))
	for group, sel := range m {
		if sel.Multi() {
			out[group] = MultiSelect(append([]string(nil), sel.Options...)...)
		} else {
			out[group] = sel
		}
	}
	return out
}
