package core

// Visibility restricts a query to the rows a caller may see.
// Staff see everything, department heads see their departments and everyone sees themselves.
type Visibility struct {
	All           bool
	EmployeeID    string   // the caller's own employee, "" if none
	DepartmentIDs []string // departments headed by the caller
}

// Allows reports whether a row owned by employeeID, in departmentID, is visible.
func (v Visibility) Allows(employeeID string, departmentID *string) bool {
	if v.All {
		return true
	}
	if v.EmployeeID != "" && v.EmployeeID == employeeID {
		return true
	}
	if departmentID != nil {
		for _, id := range v.DepartmentIDs {
			if id == *departmentID {
				return true
			}
		}
	}
	return false
}

// IsEmpty reports whether nothing at all is visible.
func (v Visibility) IsEmpty() bool {
	return !v.All && v.EmployeeID == "" && len(v.DepartmentIDs) == 0
}
