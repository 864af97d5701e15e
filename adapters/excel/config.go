package excel

// ExcelConfig holds configuration for Excel data source
type ExcelConfig struct {
	FilePath string `json:"file_path"`
	Sheet    string `json:"sheet"`
	Enabled  bool   `json:"enabled"`
}

// DefaultExcelConfig returns sensible defaults for Excel processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		Sheet:   "Sheet1",
		Enabled: false,
	}
}
