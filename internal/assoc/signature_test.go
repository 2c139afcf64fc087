package assoc_test

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/assocgen/assocerr"
	"martianoff/assocgen/internal/assoc"
)

func TestParseSignature(t *testing.T) {
	u := enumUnion("Kind", "KindA")

	tests := []struct {
		name      string
		input     string
		fnName    string
		receiver  string
		params    []string
		results   string
		dflt      string
		direction assoc.Direction
	}{
		{
			name:      "Method with receiver",
			input:     "(k Kind) Level() uint8",
			fnName:    "Level",
			receiver:  "k",
			results:   "uint8",
			direction: assoc.Forward,
		},
		{
			name:      "Leading func keyword",
			input:     "func (k Kind) Level() uint8",
			fnName:    "Level",
			receiver:  "k",
			results:   "uint8",
			direction: assoc.Forward,
		},
		{
			name:      "Unnamed receiver gets a conventional name",
			input:     "(Kind) Level() uint8",
			fnName:    "Level",
			receiver:  "k",
			results:   "uint8",
			direction: assoc.Forward,
		},
		{
			name:      "Unnamed receiver avoids a parameter name",
			input:     "(Kind) Scale(k int) int",
			fnName:    "Scale",
			receiver:  "k1",
			params:    []string{"k int"},
			results:   "int",
			direction: assoc.Forward,
		},
		{
			name:      "Self receiver",
			input:     "(k Self) Describe(prefix string) string",
			fnName:    "Describe",
			receiver:  "k",
			params:    []string{"prefix string"},
			results:   "string",
			direction: assoc.Forward,
		},
		{
			name:      "Reverse function",
			input:     "KindFromCode(code int) Kind",
			fnName:    "KindFromCode",
			params:    []string{"code int"},
			results:   "Kind",
			direction: assoc.Reverse,
		},
		{
			name:      "Grouped parameters",
			input:     "KindFromPair(major, minor int, tag string) (Kind)",
			fnName:    "KindFromPair",
			params:    []string{"major int", "minor int", "tag string"},
			results:   "Kind",
			direction: assoc.Reverse,
		},
		{
			name:      "Self in result",
			input:     "Parse(s string) option.Option[Self]",
			fnName:    "Parse",
			params:    []string{"s string"},
			results:   "option.Option[Kind]",
			direction: assoc.Reverse,
		},
		{
			name:      "Default body",
			input:     `(k Kind) Label() string { return "none" }`,
			fnName:    "Label",
			receiver:  "k",
			results:   "string",
			dflt:      `{ return "none" }`,
			direction: assoc.Forward,
		},
		{
			name:      "Composite result before default body",
			input:     "(k Kind) Tags() map[string]struct{} { return nil }",
			fnName:    "Tags",
			receiver:  "k",
			results:   "map[string]struct{}",
			dflt:      "{ return nil }",
			direction: assoc.Forward,
		},
		{
			name:      "No result",
			input:     "(k Kind) Touch()",
			fnName:    "Touch",
			receiver:  "k",
			direction: assoc.Forward,
		},
		{
			name:      "Variadic parameter",
			input:     "KindOf(codes ...int) Kind",
			fnName:    "KindOf",
			params:    []string{"codes ...int"},
			results:   "Kind",
			direction: assoc.Reverse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := assoc.ParseSignature(u, ann(tt.input))
			require.NoError(t, err)

			assert.Equal(t, tt.fnName, fn.Name)
			if tt.receiver != "" {
				require.NotNil(t, fn.Receiver())
				assert.Equal(t, tt.receiver, fn.Receiver().Name)
			} else {
				assert.Nil(t, fn.Receiver())
			}
			var params []string
			for _, p := range fn.Arguments() {
				params = append(params, p.Name+" "+p.Type)
			}
			assert.Equal(t, tt.params, params)
			assert.Equal(t, tt.results, fn.Results)
			assert.Equal(t, tt.dflt, fn.Default)
			assert.Equal(t, tt.dflt != "", fn.HasDefault())
			assert.Equal(t, tt.direction, assoc.Classify(fn))
		})
	}
}

func TestParseSignatureGenericReceiver(t *testing.T) {
	u := sealedUnion("Result", unitVariant("Empty"))
	u.TypeParams = []assoc.TypeParam{{Name: "T", Constraint: ast.NewIdent("any")}}

	fn, err := assoc.ParseSignature(u, ann("(r Result[T]) Code() int"))
	require.NoError(t, err)
	assert.Equal(t, "Result[T]", fn.Receiver().Type)

	fn, err = assoc.ParseSignature(u, ann("(r Self) Code() int"))
	require.NoError(t, err)
	assert.Equal(t, "Result[T]", fn.Receiver().Type)
}

func TestParseSignatureExported(t *testing.T) {
	u := enumUnion("Kind", "KindA")

	fn, err := assoc.ParseSignature(u, ann("(k Kind) Level() int"))
	require.NoError(t, err)
	assert.True(t, fn.Exported())

	fn, err = assoc.ParseSignature(u, ann("(k Kind) level() int"))
	require.NoError(t, err)
	assert.False(t, fn.Exported())
}

func TestParseSignatureErrors(t *testing.T) {
	u := enumUnion("Kind", "KindA")

	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{name: "Empty", input: "  ", msg: "missing function signature"},
		{name: "Missing name", input: "(k Kind) (x int) int", msg: "expected function name"},
		{name: "Missing parameter list", input: "Level uint8", msg: "expected parameter list"},
		{name: "Foreign receiver", input: "(o Other) Level() int", msg: "receiver type Other is not Kind"},
		{name: "Pointer receiver", input: "(k *Kind) Level() int", msg: "not a pointer"},
		{name: "Unnamed parameters", input: "FromCode(int) Kind", msg: "must be named"},
		{name: "Several results", input: "FromCode(c int) (Kind, error)", msg: "several results"},
		{name: "Named result", input: "FromCode(c int) (k Kind)", msg: "named result"},
		{name: "Unbalanced parameters", input: "FromCode(c int Kind", msg: "unbalanced"},
		{name: "Bad default body", input: "(k Kind) Level() int { return + }", msg: "cannot parse default body"},
		{name: "Trailing tokens", input: "(k Kind) Level() int { return 1 } extra", msg: "unexpected"},
		{name: "Bad type", input: "FromCode(c map[int) Kind", msg: "unbalanced"},
		{name: "Receiver named like a parameter", input: "(k Kind) Scale(k int) int", msg: "parameter k of Scale is declared more than once"},
		{name: "Repeated parameter", input: "FromPair(a, a int) Kind", msg: "parameter a of FromPair is declared more than once"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := assoc.ParseSignature(u, ann(tt.input))
			require.Error(t, err)
			assert.True(t, assocerr.IsType(err, assocerr.TypeSignatureParse))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDetectOptional(t *testing.T) {
	tests := []struct {
		results   string
		optional  bool
		qualifier string
		inner     string
	}{
		{results: "option.Option[uint8]", optional: true, qualifier: "option", inner: "uint8"},
		{results: "Option[map[string]int]", optional: true, inner: "map[string]int"},
		{results: "opt.Option[Kind]", optional: true, qualifier: "opt", inner: "Kind"},
		{results: "uint8"},
		{results: ""},
		{results: "Optional[int]"},
		{results: "Option[int, string]"},
		{results: "[]Option[int]"},
		{results: "*Option[int]"},
	}

	for _, tt := range tests {
		t.Run(tt.results, func(t *testing.T) {
			opt := assoc.DetectOptional(tt.results)
			assert.Equal(t, tt.optional, opt.Optional)
			assert.Equal(t, tt.qualifier, opt.Qualifier)
			assert.Equal(t, tt.inner, opt.Inner)
		})
	}
}
