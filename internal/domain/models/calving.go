package models

import "time"

// CalvingEvent summarises one applied gestation-completion transition.
type CalvingEvent struct {
	MotherID    string    `json:"motherId"`
	Species     Species   `json:"species"`
	CalvingDate time.Time `json:"calvingDate"`
	CalfCount   int       `json:"calfCount"`
	CalfIDs     []string  `json:"calfIds"`
}
