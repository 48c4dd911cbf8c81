package types

// TimestampFormat is the layout used for every timestamp persisted in the
// flat-file layout and returned by the API. It matches the format already
// present in existing users.json files.
const TimestampFormat = "2006-01-02 15:04:05"

// MarkerTimestampFormat is the layout used in deletion-marker file names.
const MarkerTimestampFormat = "2006-01-02_15-04-05"

// UserIndexEntry is the account metadata stored in the users index,
// keyed by username.
type UserIndexEntry struct {
	// PasswordHash stores the digest of the user's password. The field is
	// named "password" on disk for compatibility with existing index files.
	// It is never exposed in API responses.
	PasswordHash string `json:"password"`

	// CreatedAt is the timestamp when the account was registered.
	CreatedAt string `json:"created_at"`

	// LastLogin is the timestamp of the most recent successful login,
	// or null if the user has never logged in.
	LastLogin *string `json:"last_login"`

	// PasswordChangedAt is set when the user changes their password.
	PasswordChangedAt string `json:"password_changed_at,omitempty"`
}

// UserIndex maps usernames to their account metadata. It is the in-memory
// form of the users.json index file.
type UserIndex map[string]UserIndexEntry

// DeletionMarker records a self-service account deletion. It is written next
// to the retained profile data and is purely advisory; no automated purge
// consumes it.
type DeletionMarker struct {
	DeletedAt         string `json:"deleted_at"`
	DeletedBy         string `json:"deleted_by"`
	DataRetentionDays int    `json:"data_retention_days"`
}

// UserSummary is the admin view of an account: index metadata joined with
// the profile document subset. Sections absent on disk surface as null.
type UserSummary struct {
	Username     string  `json:"username"`
	CreatedAt    string  `json:"created_at"`
	LastLogin    *string `json:"last_login"`
	Personal     any     `json:"personal"`
	Education    any     `json:"education"`
	Experience   any     `json:"experience"`
	Volunteering any     `json:"volunteering"`
	Skills       any     `json:"skills"`
	Projects     any     `json:"projects"`
	Certificates any     `json:"certificates"`
}
