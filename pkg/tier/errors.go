package tier

import "errors"

var (
	ErrTierNotFound             = errors.New("tier not found")
	ErrInvalidTierConfiguration = errors.New("invalid tier configuration")
	ErrFailedToLoadTiers        = errors.New("failed to load tier catalog")
)
