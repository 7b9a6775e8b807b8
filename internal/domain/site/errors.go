package site

import "errors"

var (
	ErrSiteNotFound = errors.New("site not found")
	ErrSiteTaken    = errors.New("site URL is already taken")
)
