package tasks

// Defines constants for task types used in Asynq.

const (
	// TypeLibraryRebuild invalidates and rewarms the aggregated clientlib
	// output cache for a set of categories.
	TypeLibraryRebuild = "clientlib:rebuild"
)

// LibraryRebuildPayload is the payload of a TypeLibraryRebuild task.
// An empty category list means "everything".
type LibraryRebuildPayload struct {
	Categories []string `json:"categories"`
}
