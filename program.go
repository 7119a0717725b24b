package jsonschema

// Program is the compiled output of a single Compile call: one flat
// instruction stream plus the side tables every opcode operand indexes into
// (spec.md §4.6 "Program"). A schema's "program" is really just a starting
// index into Program.instructions — most keywords emit a short run of
// instructions ending in OpHalt, and compound keywords reference other runs
// by Addr.
type Program struct {
	instructions []Instruction

	// Side tables, indexed by Instruction.Pool / .Proc as documented on
	// each Opcode in instruction.go.
	values          []Value
	valueLists      []*enumSet
	numberRanges    []numberRange
	rats            []ratBound
	patterns        []*compiledPattern
	formats         []string
	stringLists     [][]string
	strings         []string
	addrLists       [][]int
	containsSpecs   []containsSpec
	propertyTables  [][]propertyRule
	patternPropTables [][]patternPropRule
	dependentRequired [][]dependentRequiredSpec
	dependentSchemas  [][]dependentSchemasSpec
	oneOfSpecs      []oneOfSpec
	ifThenElse      []ifThenElseSpec

	// procedures holds one entry per distinct $ref/$dynamicRef target the
	// compiler hoisted into a reusable call target (spec.md §4.6 "$ref
	// hoisting"): its target URI, draft, and entry address (-1 until the
	// target's own compilation finishes).
	procedures []procedure

	// root is the entry address for the schema Compile was originally
	// invoked on.
	root int
}

// procedure is one hoisted $ref target: a named, addressable subprogram the
// VM reaches through OpRefCall/OpDynamicRefCall rather
// than by inlining, so cyclic schemas (e.g. a tree node $ref-ing itself)
// compile to a finite Program instead of infinite unrolling.
type procedure struct {
	uri   string
	addr  int
	draft Draft
}

// ratBound holds a multipleOf divisor as its decoded Number, one entry per
// multipleOf keyword; the VM converts it to big.Rat when it checks a value.
type ratBound struct {
	n Number
}

// enumSet is a compiled "enum": the literal value list (order preserved
// for error messages) plus nothing else — matching is always a linear
// jsonEqual scan since enums are rarely large enough to warrant hashing and
// Values are not comparable with ==.
type enumSet struct {
	values []Value
}

// maxProgramInstructions bounds a compiled Program to the addressable
// jump-offset range (spec.md §3): every Addr/Proc operand is an int32-sized
// index into Program.instructions, so a program can never legally exceed it.
const maxProgramInstructions = 1<<31 - 1

// newProgram returns an empty Program ready for the compiler to append to.
func newProgram() *Program {
	return &Program{}
}

// emit appends instr and returns its address.
func (p *Program) emit(instr Instruction) int {
	p.instructions = append(p.instructions, instr)
	return len(p.instructions) - 1
}

