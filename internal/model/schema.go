package model

type ColumnInfo struct {
	Name       string  `json:"column_name"`
	DataType   string  `json:"data_type"`
	IsNullable string  `json:"is_nullable"`
	Default    *string `json:"column_default"`
}

type TableInfo struct {
	Name     string       `json:"table_name"`
	Columns  []ColumnInfo `json:"columns"`
	RowCount int64        `json:"row_count"`
}

type ForeignKey struct {
	Table         string `json:"table_name"`
	Column        string `json:"column_name"`
	ForeignTable  string `json:"foreign_table_name"`
	ForeignColumn string `json:"foreign_column_name"`
}

type DatabaseInfo struct {
	Name    string `json:"database_name"`
	Version string `json:"version"`
	User    string `json:"current_user"`
}

type DatabaseStructure struct {
	Database    DatabaseInfo `json:"database"`
	Tables      []TableInfo  `json:"tables"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Summary     struct {
		TotalTables      int `json:"totalTables"`
		TotalForeignKeys int `json:"totalForeignKeys"`
	} `json:"summary"`
}
