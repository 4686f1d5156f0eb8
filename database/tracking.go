package database

import (
	"github.com/gaborage/go-datamap/database/internal/tracking"
)

// Re-export the statement tracking wrappers.
type (
	TrackedConnection  = tracking.Connection
	TrackedTransaction = tracking.Transaction
	TrackingContext    = tracking.Context
	TrackingSettings   = tracking.Settings
)

var (
	NewTrackedConnection = tracking.NewConnection
	TrackDBOperation     = tracking.TrackDBOperation
	NewTrackingSettings  = tracking.NewSettings
)

const (
	DefaultSlowQueryThreshold = tracking.DefaultSlowQueryThreshold
	DefaultMaxQueryLength     = tracking.DefaultMaxQueryLength
)
