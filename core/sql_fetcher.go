package core

import (
	"database/sql"
	"fmt"
	"strings"
)

// SQLRowFetcher implements RowFetcher over a SQL database (MySQL, PostgreSQL).
// The source name maps to a table name.
type SQLRowFetcher struct {
	DB         *sql.DB
	DriverName string // "mysql" or "postgres"
}

func NewSQLRowFetcher(db *sql.DB, driverName string) *SQLRowFetcher {
	return &SQLRowFetcher{
		DB:         db,
		DriverName: driverName,
	}
}

// Fetch selects all rows of the source table, with equality filters from
// params appended as a WHERE clause.
func (f *SQLRowFetcher) Fetch(source string, params map[string]string) ([]map[string]interface{}, error) {
	query := fmt.Sprintf("SELECT * FROM %s", source)
	var args []interface{}

	if len(params) > 0 {
		var conditions []string
		i := 1
		for k, v := range params {
			if f.DriverName == "postgres" {
				conditions = append(conditions, fmt.Sprintf("%s = $%d", k, i))
			} else {
				conditions = append(conditions, fmt.Sprintf("%s = ?", k))
			}
			args = append(args, v)
			i++
		}
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := f.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var result []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		entry := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			// MySQL driver often returns strings as []byte
			if b, ok := val.([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = val
			}
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
