package core

// RowFetcher pulls asset records from an external source. The source name
// identifies a table, file, or view depending on the backend; params apply
// simple equality filters.
type RowFetcher interface {
	Fetch(source string, params map[string]string) ([]map[string]interface{}, error)
}
