package migrate

import (
	"fmt"
	"strings"
)

// GenerateName creates a descriptive name for a list of operations
func GenerateName(ops []Operation) string {
	if len(ops) == 0 {
		return "no_changes"
	}

	// Categorize changes
	var added, dropped, modified []string
	var tables, columns int

	for _, op := range ops {
		switch o := op.(type) {
		case *CreateTableOperation:
			added = append(added, "table_"+o.Table)
			tables++
		case *DropTableOperation:
			dropped = append(dropped, "table_"+o.Table)
			tables++
		case *RenameTableOperation:
			modified = append(modified, "table_"+o.NewName)
			tables++
		case *AddColumnOperation:
			added = append(added, fmt.Sprintf("%s.%s", o.Table, o.Column.Name))
			columns++
		case *DropColumnOperation:
			dropped = append(dropped, fmt.Sprintf("%s.%s", o.Table, o.Name))
			columns++
		case *AlterColumnOperation:
			modified = append(modified, fmt.Sprintf("%s.%s", o.Table, o.Column.Name))
			columns++
		case *RenameColumnOperation:
			modified = append(modified, fmt.Sprintf("%s.%s", o.Table, o.NewName))
			columns++
		}
	}

	// Build name components
	var parts []string

	if len(added) > 0 {
		if len(added) <= 3 {
			parts = append(parts, "add_"+strings.Join(added, "_"))
		} else {
			parts = append(parts, fmt.Sprintf("add_%d_items", len(added)))
		}
	}

	if len(dropped) > 0 {
		if len(dropped) <= 3 {
			parts = append(parts, "drop_"+strings.Join(dropped, "_"))
		} else {
			parts = append(parts, fmt.Sprintf("drop_%d_items", len(dropped)))
		}
	}

	if len(modified) > 0 {
		if len(modified) <= 3 {
			parts = append(parts, "modify_"+strings.Join(modified, "_"))
		} else {
			parts = append(parts, fmt.Sprintf("modify_%d_items", len(modified)))
		}
	}

	// only constraint and index changes
	if len(parts) == 0 {
		return "schema_changes"
	}

	name := strings.Join(parts, "_and_")
	if len(name) > 200 {
		return fmt.Sprintf("schema_changes_%d_tables_%d_columns", tables, columns)
	}
	return name
}
