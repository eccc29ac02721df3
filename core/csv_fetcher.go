package core

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CsvRowFetcher implements RowFetcher over CSV exports. The source name maps
// to a file in RootDir, first row is the header.
type CsvRowFetcher struct {
	RootDir string
}

func NewCsvRowFetcher(rootDir string) *CsvRowFetcher {
	return &CsvRowFetcher{RootDir: rootDir}
}

func (f *CsvRowFetcher) Fetch(source string, params map[string]string) ([]map[string]interface{}, error) {
	filePath := filepath.Join(f.RootDir, source+".csv")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file %s: %w", filePath, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv content: %w", err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	header := records[0]
	var result []map[string]interface{}
	for i := 1; i < len(records); i++ {
		item := make(map[string]interface{})
		for j, col := range records[i] {
			if j < len(header) {
				item[header[j]] = col
			}
		}

		match := true
		for k, v := range params {
			if colVal, hasCol := item[k]; hasCol {
				if fmt.Sprintf("%v", colVal) != v {
					match = false
					break
				}
			}
		}
		if match {
			result = append(result, item)
		}
	}

	return result, nil
}
