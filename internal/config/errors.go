package config

import "errors"

// Errors returned by Load and Config.Validate.
var (
	// ErrInvalidConfig marks a setting that fails validation.
	ErrInvalidConfig = errors.New("hoopstate config: invalid setting")
	// ErrLoadConfig marks a YAML file or HOOP_ variable that could not be read.
	ErrLoadConfig = errors.New("hoopstate config: cannot read sources")
	// ErrUnsupportedArchive marks an archive_driver with no sink behind it.
	// It is always reported together with ErrInvalidConfig.
	ErrUnsupportedArchive = errors.New("unsupported archive_driver")
)
