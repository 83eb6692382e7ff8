package backup

import "errors"

// Sentinel errors for the backup scheduler.
var (
	ErrInvalidSchedule = errors.New("invalid backup schedule")
	ErrBackup          = errors.New("backup failed")
)
