package rules

import (
	"fmt"
	"strings"
)

// Registry is an ordered table of rules keyed by rule key. Order of
// insertion is the evaluation and output order.
type Registry struct {
	order []string
	rules map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: map[string]Rule{}}
}

// Add appends r. Keys must be unique and shaped "<category>/<name>".
func (reg *Registry) Add(r Rule) error {
	if err := checkRule(r); err != nil {
		return err
	}
	if _, ok := reg.rules[r.Key]; ok {
		return fmt.Errorf("rule %q already registered", r.Key)
	}
	reg.order = append(reg.order, r.Key)
	reg.rules[r.Key] = r
	return nil
}

// MustAdd is Add for static tables.
func (reg *Registry) MustAdd(r Rule) {
	if err := reg.Add(r); err != nil {
		panic(err)
	}
}

// Replace swaps the rule stored under r.Key, keeping its position.
func (reg *Registry) Replace(r Rule) error {
	if err := checkRule(r); err != nil {
		return err
	}
	if _, ok := reg.rules[r.Key]; !ok {
		return fmt.Errorf("rule %q not registered", r.Key)
	}
	reg.rules[r.Key] = r
	return nil
}

// Remove drops key and reports whether it was present.
func (reg *Registry) Remove(key string) bool {
	if _, ok := reg.rules[key]; !ok {
		return false
	}
	delete(reg.rules, key)
	for i, k := range reg.order {
		if k == key {
			reg.order = append(reg.order[:i:i], reg.order[i+1:]...)
			break
		}
	}
	return true
}

func (reg *Registry) Get(key string) (Rule, bool) {
	r, ok := reg.rules[key]
	return r, ok
}

// Rules returns a copy of the table in registry order.
func (reg *Registry) Rules() []Rule {
	out := make([]Rule, 0, len(reg.order))
	for _, k := range reg.order {
		out = append(out, reg.rules[k])
	}
	return out
}

func (reg *Registry) Keys() []string {
	return append([]string(nil), reg.order...)
}

func (reg *Registry) Len() int { return len(reg.order) }

func checkRule(r Rule) error {
	cat, name, ok := strings.Cut(r.Key, "/")
	if !ok || cat == "" || name == "" {
		return fmt.Errorf("rule key %q must look like <category>/<name>", r.Key)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rule %q: invalid severity %q", r.Key, r.Severity)
	}
	if r.Apply == nil {
		return fmt.Errorf("rule %q: no apply function", r.Key)
	}
	return nil
}
