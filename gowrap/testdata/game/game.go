// Package game is a fixture for binding generation.
package game

import (
	"errors"

	"github.com/chazu/capscript/vm"
)

// Hero is fully scriptable.
//
//capscript:expose
type Hero struct {
	Name   string
	Level  int
	Bonus  *int
	Ally   *Hero
	Tags   []string
	health int
}

// Health is the hero's hit points.
//
//capscript:property
func (h *Hero) Health() int { return h.health }

// SetHealth replaces the hero's hit points.
func (h *Hero) SetHealth(n int) { h.health = n }

// Heal restores n points.
func (h *Hero) Heal(n int) { h.health += n }

// Greet names another hero.
func (h *Hero) Greet(other *Hero) string { return h.Name + " greets " + other.Name }

// DescribeLevel is the int overload of Describe.
//
//capscript:expose Describe
func (h *Hero) DescribeLevel(n int) string { return "level" }

// DescribeTitle is the string overload of Describe.
//
//capscript:expose Describe
func (h *Hero) DescribeTitle(s string) string { return "title " + s }

// Train fails on negative input.
func (h *Hero) Train(n int) (int, error) {
	if n < 0 {
		return 0, errors.New("negative training")
	}
	h.Level += n
	return h.Level, nil
}

// Echo passes any script value through.
func (h *Hero) Echo(v vm.Value) vm.Value { return v }

// Position is not scriptable: two results.
func (h *Hero) Position() (int, int) { return 0, 0 }

// Ready is not scriptable: bool has no script type.
func (h *Hero) Ready() bool { return true }

// Vault exposes only marked members.
type Vault struct {
	Gold int `capscript:"expose"`
	Code string
}

// Deposit adds gold.
//
//capscript:expose
func (v *Vault) Deposit(n int) { v.Gold += n }

// Open reveals the code.
func (v *Vault) Open() string { return v.Code }

// Ledger has no markers and is skipped unless requested.
type Ledger struct {
	Entries int
}

type hidden struct {
	X int
}
