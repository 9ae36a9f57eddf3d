package output

import "sort"

// SortRows sorts rows by kind priority, percent ASC, name ASC
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		// Primary: kind priority
		iPriority := GetRowKindPriority(rows[i].Kind)
		jPriority := GetRowKindPriority(rows[j].Kind)
		if iPriority != jPriority {
			return iPriority < jPriority
		}
		// Secondary: least covered first
		if rows[i].Percent != rows[j].Percent {
			return rows[i].Percent < rows[j].Percent
		}
		// Tertiary: name ASC
		return rows[i].Name < rows[j].Name
	})
}

// SortWarnings sorts warnings by severity DESC, code ASC, subject ASC, text ASC
func SortWarnings(warnings []Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		iSev := GetWarningSeverity(warnings[i].Severity)
		jSev := GetWarningSeverity(warnings[j].Severity)
		if iSev != jSev {
			return iSev < jSev
		}
		if warnings[i].Code != warnings[j].Code {
			return warnings[i].Code < warnings[j].Code
		}
		if warnings[i].Subject != warnings[j].Subject {
			return warnings[i].Subject < warnings[j].Subject
		}
		return warnings[i].Text < warnings[j].Text
	})
}
