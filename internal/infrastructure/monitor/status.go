package monitor

import "time"

// Status is the last check result. Cache is only meaningful when
// CacheEnabled is true.
type Status struct {
	Store        bool      `json:"store"`
	StoreDriver  string    `json:"store_driver"`
	Cache        bool      `json:"cache"`
	CacheEnabled bool      `json:"cache_enabled"`
	LastCheck    time.Time `json:"last_check"`
}
