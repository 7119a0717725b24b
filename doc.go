// Package jsonschema compiles JSON Schema documents (drafts 4, 6, 7,
// 2019-09 and 2020-12) into a linear bytecode Program and validates
// instances against it with a stack-based virtual machine.
//
// Credit to https://github.com/santhosh-tekuri/jsonschema for format validators.
package jsonschema
