package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
var (
	// ErrSnapshotNotFound indicates that no dashboard snapshot matches the request.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Source errors describe problems with the spreadsheet exports.
// Missing columns are fatal configuration errors, never defaulted.
var (
	// ErrInvalidCSVHeaders indicates that an export is missing expected columns.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")

	// ErrDuplicateCSVHeader indicates that two export columns map to the same field.
	ErrDuplicateCSVHeader = errors.New("duplicate CSV header")

	// ErrEmptyExport indicates that an export has no header row.
	ErrEmptyExport = errors.New("export is empty")

	// ErrSourceUnavailable indicates that an export could not be downloaded.
	ErrSourceUnavailable = errors.New("spreadsheet export unavailable")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrReservedCustomerLabel indicates that a customer uses the label of the total row.
	ErrReservedCustomerLabel = errors.New("customer uses reserved total label")

	// ErrInvalidThreshold indicates that a NAV threshold is not a non-negative number.
	ErrInvalidThreshold = errors.New("invalid NAV threshold")

	// ErrInvalidPolicy indicates an unknown pivot policy.
	ErrInvalidPolicy = errors.New("invalid pivot policy")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrInvalidLimit indicates that a list limit is out of range.
	ErrInvalidLimit = errors.New("invalid limit")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRefreshDashboard = errors.New("failed to refresh dashboard")
	ErrFailedToRetrieveSnapshot = errors.New("failed to retrieve snapshot")
	ErrFailedToSaveSnapshot     = errors.New("failed to save snapshot")
	ErrFailedToExportWorkbook   = errors.New("failed to export workbook")
	ErrFailedToGetVersionInfo   = errors.New("failed to get version information")
)

// Data integrity errors represent inconsistencies or corruption in stored data.
var (
	// ErrSnapshotDecrypt indicates that a stored payload could not be opened with the configured keys.
	ErrSnapshotDecrypt = errors.New("snapshot payload could not be decrypted")
)
