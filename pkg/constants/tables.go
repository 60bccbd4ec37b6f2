package constants

// Identity table and the column ownership foreign keys must reference.
const (
	DefaultUserTable = "_user"
	UserIDColumn     = "id"
)

// Well-known JSON schemas for file upload columns.
const (
	SchemaFileUpload  = "std.FileUpload"
	SchemaFileUploads = "std.FileUploads"
)

// IsFileUploadSchema reports whether name refers to one of the file upload schemas.
func IsFileUploadSchema(name string) bool {
	return name == SchemaFileUpload || name == SchemaFileUploads
}
