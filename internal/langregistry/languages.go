package langregistry

// defaultLanguages is a direct translation of the original tool's
// LANGUAGE_CONFIGS table (language_config.py) into Go struct literals.
// Go is added as the reflective-fallback language (see internal/parser).
var defaultLanguages = []Language{
	{
		Name:              "python",
		Extensions:        []string{".py"},
		FunctionNodeKinds: []string{"function_definition"},
		ClassNodeKinds:    []string{"class_definition"},
		ModuleNodeKinds:   []string{"module"},
		CallNodeKinds:     []string{"call"},
		BranchNodeKinds:   []string{"if_statement"},
		LoopNodeKinds:     []string{"for_statement", "while_statement"},
		TryNodeKinds:      []string{"try_statement"},
		CatchNodeKinds:    []string{"except_clause"},
		BlockNodeKinds:    []string{"block", "suite", "module"},
		NameField:         "name",
		BodyField:         "body",
		PackageIndicators: []string{"__init__.py"},
	},
	{
		Name:              "javascript",
		Extensions:        []string{".js", ".jsx"},
		FunctionNodeKinds: []string{"function_declaration", "arrow_function", "method_definition"},
		ClassNodeKinds:    []string{"class_declaration"},
		ModuleNodeKinds:   []string{"program"},
		CallNodeKinds:     []string{"call_expression", "new_expression"},
		BranchNodeKinds:   []string{"if_statement"},
		LoopNodeKinds:     []string{"for_statement", "while_statement", "do_statement", "for_in_statement", "for_of_statement"},
		SwitchNodeKinds:   []string{"switch_statement", "switch_case", "switch_default"},
		TryNodeKinds:      []string{"try_statement"},
		CatchNodeKinds:    []string{"catch_clause"},
		BlockNodeKinds:    []string{"statement_block", "program"},
		NameField:         "name",
		BodyField:         "body",
	},
	{
		Name:              "typescript",
		Extensions:        []string{".ts", ".tsx"},
		FunctionNodeKinds: []string{"function_declaration", "arrow_function", "method_definition"},
		ClassNodeKinds:    []string{"class_declaration", "interface_declaration"},
		ModuleNodeKinds:   []string{"program"},
		CallNodeKinds:     []string{"call_expression", "new_expression"},
		BranchNodeKinds:   []string{"if_statement"},
		LoopNodeKinds:     []string{"for_statement", "while_statement", "do_statement", "for_in_statement", "for_of_statement"},
		SwitchNodeKinds:   []string{"switch_statement", "switch_case", "switch_default"},
		TryNodeKinds:      []string{"try_statement"},
		CatchNodeKinds:    []string{"catch_clause"},
		BlockNodeKinds:    []string{"statement_block", "program"},
		NameField:         "name",
		BodyField:         "body",
	},
	{
		// Go is this rewrite's reflective-fallback language: its own
		// standard library (go/parser + go/ast) provides the tree API the
		// Parser Facade falls back to when no tree-sitter grammar result
		// is available, mirroring the original tool's Python-ast fallback.
		Name:              "go",
		Extensions:        []string{".go"},
		FunctionNodeKinds: []string{"function_declaration", "method_declaration"},
		ClassNodeKinds:    []string{"type_declaration"},
		ModuleNodeKinds:   []string{"source_file"},
		CallNodeKinds:     []string{"call_expression"},
		BranchNodeKinds:   []string{"if_statement"},
		LoopNodeKinds:     []string{"for_statement"},
		TryNodeKinds:      nil,
		CatchNodeKinds:    nil,
		BlockNodeKinds:    []string{"block", "source_file"},
		NameField:         "name",
		BodyField:         "body",
		PackageIndicators: nil,
	},
}
