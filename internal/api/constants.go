package api

// Version reported in the OpenAPI document and health responses.
const Version = "1.0.0"

// Cache-Control header values.
const (
	CacheOneDayPrivate = "private, max-age=86400"
	CacheNoStore       = "no-cache"
)
