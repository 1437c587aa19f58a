package constants

import "time"

const (
	MaxUsernamesPerLookup = 100
	LookupBatchDelay      = 3 * time.Second
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	ShutdownTimeout    = 5 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
)

const (
	// StatsTimestampLayout renders as 2024/01/01/Mon.
	StatsTimestampLayout = "2006/01/02/Mon"
	StatsDateLayout      = "2006/01/02"
	GettrPlaceholder     = "0"
)

const (
	TwitterLookupURL       = "https://api.twitter.com/2/users/by"
	TwitterUserFields      = "public_metrics"
	TwitterRequestTokenURL = "https://api.twitter.com/oauth/request_token"
	TwitterAuthorizeURL    = "https://api.twitter.com/oauth/authorize"
	TwitterAccessTokenURL  = "https://api.twitter.com/oauth/access_token"
	OutOfBandCallback      = "oob"
)
