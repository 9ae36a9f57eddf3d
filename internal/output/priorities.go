package output

import cverrors "probecov/internal/errors"

// RowKindPriority orders rows from the root down
var RowKindPriority = map[RowKind]int{
	RowBundle:  1,
	RowPackage: 2,
	RowClass:   3,
	RowMethod:  4,
}

// WarningSeverity defines the ordering priority for warning severities
// Lower numbers have higher priority (sorted first)
var WarningSeverity = map[string]int{
	"error":   1,
	"warning": 2,
	"info":    3,
}

// GetRowKindPriority returns the priority for a row kind; unknown kinds sort last
func GetRowKindPriority(kind RowKind) int {
	if priority, ok := RowKindPriority[kind]; ok {
		return priority
	}
	return len(RowKindPriority) + 1
}

// GetWarningSeverity returns the priority for a given warning severity
// Unknown severities get the lowest priority (highest number)
func GetWarningSeverity(severity string) int {
	if priority, ok := WarningSeverity[severity]; ok {
		return priority
	}
	return WarningSeverity["info"]
}

// SeverityOf maps a result warning code to a report severity
func SeverityOf(code cverrors.ErrorCode) string {
	switch code {
	case cverrors.MalformedProbeLength, cverrors.DiffIdentityCollision:
		return "warning"
	case cverrors.ModelMismatch, cverrors.InvalidModel, cverrors.InternalError:
		return "error"
	default:
		return "info"
	}
}

// Warnings converts result warnings to report warnings, sorted
func Warnings(ws []cverrors.Warning) []Warning {
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		out = append(out, Warning{
			Severity: SeverityOf(w.Code),
			Code:     string(w.Code),
			Subject:  w.Subject,
			Text:     w.Message,
		})
	}
	SortWarnings(out)
	return out
}
