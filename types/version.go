package types

// Version is the canonical lintstream version.
// The CLI, stored record schema and completion events share this version.
const Version = "0.4.0"

// RecordSchemaVersion is stamped on every stored group and run record.
// It changes only when the stored record shape changes.
const RecordSchemaVersion = "1"
