package parser

// querySet names the tree-sitter query source for each extracted concern.
// An empty string disables that query for the language (compileQuery
// returns nil, and the facade reports absence rather than erroring).
type querySet struct {
	functions string
	classes   string
	calls     string
	imports   string
}

var pythonQueries = querySet{
	functions: `
(function_definition
  name: (identifier) @name) @def
`,
	classes: `
(class_definition
  name: (identifier) @name) @def
`,
	calls: `
(call
  function: [
    (identifier) @name
    (attribute attribute: (identifier) @name)
  ]) @call
`,
	imports: `
(import_statement name: (dotted_name) @module)
(import_statement name: (dotted_name) @module (aliased_import (identifier) @alias))
(import_from_statement module_name: (dotted_name) @module)
(import_from_statement module_name: (dotted_name) @module (import_list (aliased_import (identifier) @member)))
(import_from_statement module_name: (dotted_name) @module (import_list (dotted_name (identifier) @member)))
(import_from_statement module_name: (dotted_name) @module (wildcard_import))
(import_from_statement (relative_import) @module)
(import_from_statement (relative_import) @module (import_list (aliased_import (identifier) @member)))
`,
}

var javascriptQueries = querySet{
	functions: `
[
  (function_declaration name: (identifier) @name) @def
  (method_definition name: (property_identifier) @name) @def
]
`,
	classes: `
(class_declaration name: (identifier) @name) @def
`,
	calls: `
(call_expression
  function: [
    (identifier) @name
    (member_expression property: (property_identifier) @name)
  ]) @call
`,
	imports: `
(import_statement source: (string) @module)
(import_statement (import_clause (named_imports (import_specifier (identifier) @member))) source: (string) @module)
(import_statement (import_clause (namespace_import (identifier) @alias)) source: (string) @module)
(lexical_declaration (variable_declarator (call_expression function: (identifier) @req args: (arguments (string) @module))))
`,
}

var typescriptQueries = querySet{
	functions: `
[
  (function_declaration name: (identifier) @name) @def
  (method_definition name: (property_identifier) @name) @def
]
`,
	classes: `
[
  (class_declaration name: (type_identifier) @name) @def
  (interface_declaration name: (type_identifier) @name) @def
]
`,
	calls: `
(call_expression
  function: [
    (identifier) @name
    (member_expression property: (property_identifier) @name)
  ]) @call
`,
	imports: `
(import_statement source: (string) @module)
(import_statement (import_clause (named_imports (import_specifier (identifier) @member))) source: (string) @module)
(import_statement (import_clause (namespace_import (identifier) @alias)) source: (string) @module)
(lexical_declaration (variable_declarator (call_expression function: (identifier) @req args: (arguments (string) @module))))
`,
}
