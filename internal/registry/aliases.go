package registry

// aliasTable maps every accepted comparator alias to its uniform name.
// Unknown aliases pass through unchanged (UniformComparator below).
var aliasTable = map[string]string{
	"eq": "equals", "==": "equals", "is": "equals", "equals": "equals",
	"ne": "not_equals", "!=": "not_equals", "not_equals": "not_equals",
	"lt": "less_than", "less_than": "less_than",
	"le": "less_than_or_equals", "less_than_or_equals": "less_than_or_equals",
	"gt": "greater_than", "greater_than": "greater_than",
	"ge": "greater_than_or_equals", "greater_than_or_equals": "greater_than_or_equals",
	"str_eq": "string_equals", "string_equals": "string_equals",
	"len_eq": "length_equals", "count_eq": "length_equals", "length_equals": "length_equals",
	"len_lt": "length_less_than", "count_lt": "length_less_than", "length_less_than": "length_less_than",
	"len_le": "length_less_than_or_equals", "count_le": "length_less_than_or_equals", "length_less_than_or_equals": "length_less_than_or_equals",
	"len_gt": "length_greater_than", "count_gt": "length_greater_than", "length_greater_than": "length_greater_than",
	"len_ge": "length_greater_than_or_equals", "count_ge": "length_greater_than_or_equals", "length_greater_than_or_equals": "length_greater_than_or_equals",
	"contains":      "contains",
	"contains_by":   "contains_by",
	"type_match":    "type_match",
	"regex_match":   "regex_match",
	"startswith":    "startswith",
	"endswith":      "endswith",
}

// UniformComparator converts a comparator alias to its uniform registry
// name. Aliases not present in the table pass through unchanged, per
// spec.md's testable property on unknown aliases.
func UniformComparator(alias string) string {
	if uniform, ok := aliasTable[alias]; ok {
		return uniform
	}
	return alias
}
