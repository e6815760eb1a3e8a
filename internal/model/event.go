package model

import "time"

// FallbackEvent records that a response was served from synthetic data
type FallbackEvent struct {
	Endpoint  string    `json:"endpoint"`
	Symbol    string    `json:"symbol,omitempty"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
