package jsonschema

// Opcode names every instruction the compiler can emit into a Program
// (spec.md §4.5 "Instruction set"). Each keyword (or small keyword cluster)
// compiles to one opcode carrying just the operands that keyword needs;
// compound/applicator keywords carry addresses into the same flat Program
// rather than nested structures; the VM evaluates the instruction run at
// such an address with a recursive Go call (runNode in vm.go).
type Opcode uint8

const (
	OpNop Opcode = iota
	OpTrue
	OpFalse

	OpType           // Operand.Types: bitmask of acceptable jsonType() results
	OpConst          // Operand.Pool: index into Program.values
	OpEnum           // Operand.Pool: index into Program.valueLists
	OpNumberRange    // Operand.Pool: index into Program.numberRanges
	OpMultipleOf     // Operand.Pool: index into Program.rats
	OpMinLength      // Operand.Int
	OpMaxLength      // Operand.Int
	OpPattern        // Operand.Pool: index into Program.patterns
	OpFormat         // Operand.Pool: index into Program.formats

	OpMinItems    // Operand.Int
	OpMaxItems    // Operand.Int
	OpUniqueItems // no operand
	OpPrefixItems // Operand.Pool: index into Program.addrLists (one addr per tuple slot)
	OpItems       // Operand.Addr: schema applied to every element past any prefix
	OpAdditionalItems // Operand.Addr: legacy items-array tail (draft4-2019)
	OpContains    // Operand.Pool: index into Program.containsSpecs

	OpMinProperties      // Operand.Int
	OpMaxProperties      // Operand.Int
	OpRequired           // Operand.Pool: index into Program.stringLists
	OpProperties         // Operand.Pool: index into Program.propertyTables
	OpPatternProperties  // Operand.Pool: index into Program.patternPropTables
	OpAdditionalProperties // Operand.Addr
	OpPropertyNames      // Operand.Addr
	OpDependentRequired  // Operand.Pool: index into Program.dependentRequired
	OpDependentSchemas   // Operand.Pool: index into Program.dependentSchemas
	OpUnevaluatedProperties // Operand.Addr
	OpUnevaluatedItems      // Operand.Addr

	OpAllOf  // Operand.Pool: index into Program.addrLists
	OpAnyOf  // Operand.Pool: index into Program.addrLists
	OpOneOf  // Operand.Pool: index into Program.oneOfSpecs
	OpNot    // Operand.Addr
	OpIf     // Operand.Pool: index into Program.ifThenElse

	OpRefCall        // Operand.Proc: index into Program.procedures (static $ref/recursiveRef)
	OpDynamicRefCall // Operand.Proc: index into Program.procedures, resolved dynamically

	OpContentEncoding // Operand.Pool: index into Program.strings (decoder name)
	OpContentMediaType // Operand.Pool: index into Program.strings (media type name)
	OpContentSchema    // Operand.Addr

	OpHalt // end of a schema's linear instruction run
)

// Instruction is the flat, fixed-shape unit a Program is made of. Only the
// operand field(s) relevant to Op are meaningful; everything else is zero.
// Keeping every instruction this one shape (rather than an interface with
// per-opcode Go types) is what lets Program be a plain []Instruction slice:
// each schema is a run of instructions ending in OpHalt, and nested schemas
// are other runs reached through an address operand.
type Instruction struct {
	Op       Opcode
	Location string // schema-relative JSON Pointer, for error reporting
	Keyword  string // the keyword that produced this instruction

	Int   int
	Addr  int // jump target: index into Program.instructions
	Pool  int // index into whichever side table Op implies
	Proc  int // index into Program.procedures
	Types uint32
}

// JSON type bits for OpType, matching jsonType()'s vocabulary.
const (
	typeNull Operand = 1 << iota
	typeBoolean
	typeString
	typeArray
	typeObject
	typeInteger
	typeNumber
)

// Operand is just a uint32 bitmask alias; named for readability at the
// OpType constant block above.
type Operand = uint32

// numberRange bundles the four-way minimum/maximum + exclusive flags a
// single OpNumberRange instruction tests (spec.md groups these into one
// keyword cluster since they share the same comparison machinery).
type numberRange struct {
	hasMin, hasMax         bool
	min, max               Number
	exclusiveMin, exclusiveMax bool
}

// containsSpec bundles "contains" with its 2019+ minContains/maxContains
// companions.
type containsSpec struct {
	addr     int
	min, max int // max == -1 means unbounded
}

// oneOfSpec bundles oneOf's branch addresses with an optional discriminator
// hoisted by the compiler (spec.md §4.6 "oneOf discriminator hoisting").
type oneOfSpec struct {
	addrs         []int
	discriminator *discriminatorSpec
}

// discriminatorSpec names a required string property whose const/enum value
// uniquely identifies which oneOf branch can possibly match, letting the VM
// jump straight to that branch instead of trying every branch in turn.
type discriminatorSpec struct {
	property string
	dispatch map[string]int // literal value -> branch index
}

// ifThenElse bundles the "if"/"then"/"else" trio (any of then/else may be
// absent, represented by addr < 0).
type ifThenElseSpec struct {
	ifAddr, thenAddr, elseAddr int
}

// dependentRequiredSpec is one "if propertyKey present, these are required"
// rule.
type dependentRequiredSpec struct {
	property string
	requires []string
}

// dependentSchemasSpec is one "if propertyKey present, validate against
// addr" rule.
type dependentSchemasSpec struct {
	property string
	addr     int
}

// propertyRule pairs a declared "properties" key with the address of its
// schema.
type propertyRule struct {
	name string
	addr int
}

// patternPropRule pairs a "patternProperties" compiled pattern with the
// address of its schema.
type patternPropRule struct {
	pattern *compiledPattern
	addr    int
}
