package main

import "fmt"

//go:generate go run . wrap -in-package .

// Player is the demo host object scripts see as "player".
//
//capscript:expose
type Player struct {
	Name    string
	Score   int
	Counter int
	health  int
}

// NewPlayer creates a player at full health.
func NewPlayer(name string) *Player {
	return &Player{Name: name, health: 50}
}

// Health is the player's hit points.
//
//capscript:property
func (p *Player) Health() int { return p.health }

// SetHealth replaces the player's hit points.
func (p *Player) SetHealth(n int) { p.health = n }

// Heal restores n hit points.
func (p *Player) Heal(n int) { p.health += n }

// Add returns a + b.
func (p *Player) Add(a, b int) int { return a + b }

// Status summarizes the player.
func (p *Player) Status() string {
	return fmt.Sprintf("%s: health=%d score=%d", p.Name, p.health, p.Score)
}
