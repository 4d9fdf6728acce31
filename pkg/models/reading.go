package models

import "time"

type Reading struct {
	ID                string     `json:"id"`
	Owner             string     `json:"owner"`
	Input             BirthInput `json:"input"`
	SoulStars         []string   `json:"soul_stars"`
	FiveElementsClass string     `json:"five_elements_class"`
	CreatedAt         time.Time  `json:"created_at"`
}
