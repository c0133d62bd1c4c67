package label

// DefectRule maps one boolean sensor flag to a defect classification.
type DefectRule struct {
	Flag string
	Name string
}

// DefaultDefectRules is the plant's defect taxonomy in precedence order.
// Spark detection outranks a diameter excursion when both flags are set.
var DefaultDefectRules = []DefectRule{
	{Flag: "spark", Name: "Spark"},
	{Flag: "diameter", Name: "Diameter"},
}

// NoDefect is the classification when no rule matches.
const NoDefect = "None"

// ClassifyDefect evaluates the rules in order and returns the first
// classification whose flag is set.
func ClassifyDefect(flags map[string]bool, rules []DefectRule) string {
	for _, rule := range rules {
		if flags[rule.Flag] {
			return rule.Name
		}
	}
	return NoDefect
}

// qaStatusText returns the QA annotation printed next to the coil length.
func qaStatusText(defectType string) string {
	if defectType == NoDefect || defectType == "" {
		return ""
	}
	return " (QA HOLD)"
}
