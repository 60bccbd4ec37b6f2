package listing

// Qualifier is the comparison applied by one filter occurrence, e.g. col[gte]=5.
type Qualifier int

const (
	// QualifierNone marks an unrecognized operator token. Such filters are dropped.
	QualifierNone Qualifier = iota
	QualifierEqual
	QualifierNot
	QualifierNotEqual
	QualifierGreaterThanEqual
	QualifierGreaterThan
	QualifierLessThanEqual
	QualifierLessThan
	QualifierLike
	QualifierRegexp
)

// qualifierFromToken maps the bracketed operator token. An absent bracket means equality.
func qualifierFromToken(token string, present bool) Qualifier {
	if !present {
		return QualifierEqual
	}
	switch token {
	case "gte":
		return QualifierGreaterThanEqual
	case "gt":
		return QualifierGreaterThan
	case "lte":
		return QualifierLessThanEqual
	case "lt":
		return QualifierLessThan
	case "not":
		return QualifierNot
	case "ne":
		return QualifierNotEqual
	case "like":
		return QualifierLike
	case "re":
		return QualifierRegexp
	default:
		return QualifierNone
	}
}

// SQL returns the SQL operator, or "" for QualifierNone.
func (q Qualifier) SQL() string {
	switch q {
	case QualifierEqual:
		return "="
	case QualifierNot, QualifierNotEqual:
		return "<>"
	case QualifierGreaterThanEqual:
		return ">="
	case QualifierGreaterThan:
		return ">"
	case QualifierLessThanEqual:
		return "<="
	case QualifierLessThan:
		return "<"
	case QualifierLike:
		return "LIKE"
	case QualifierRegexp:
		return "REGEXP"
	default:
		return ""
	}
}

func (q Qualifier) String() string {
	if q == QualifierNone {
		return "none"
	}
	return q.SQL()
}
