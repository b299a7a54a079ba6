package statements

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec(t *testing.T) {
	t.Run("loops and branches", func(t *testing.T) {
		env := Env{}
		err := Exec(`
x = 0;
while (x < 10) { x = x + 1; }
if (x == 10) { done = true; } else { done = false; }
`, env)
		require.NoError(t, err)
		assert.Equal(t, Env{"x": 10, "done": true}, env)
	})

	t.Run("identifiers may start with keywords", func(t *testing.T) {
		env := Env{"iffy": 2}
		require.NoError(t, Exec("whiley = iffy * 3;", env))
		assert.Equal(t, 6, env["whiley"])
	})

	t.Run("else branch", func(t *testing.T) {
		env := Env{"n": 1}
		require.NoError(t, Exec("if (n > 5) { big = true; } else { big = false; }", env))
		assert.Equal(t, false, env["big"])
	})

	for _, test := range []struct {
		Name   string
		Source string
		Error  error
	}{
		{"undefined variable", "y = z + 1;", ErrUndefined},
		{"condition must be a bool", "if (1) { }", ErrType},
		{"arithmetic on bools", "b = true + 1;", ErrType},
		{"endless loop", "while (true) { }", ErrTooManySteps},
	} {
		t.Run(test.Name, func(t *testing.T) {
			err := Exec(test.Source, Env{})
			require.ErrorIs(t, err, test.Error)
		})
	}

	t.Run("syntax errors don't run", func(t *testing.T) {
		env := Env{}
		err := Exec("x = 1; if = 2;", env)
		require.Error(t, err)
		assert.Empty(t, env)
	})
}

func TestCheck(t *testing.T) {
	t.Run("missing semicolon", func(t *testing.T) {
		result, err := Check("x = 1")
		require.NoError(t, err)
		require.True(t, result.Matched)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "expected '0'..'9', Spacing, Operator or ';', found EOI @ 6", result.Errors[0].Error())
	})

	for _, source := range []string{
		"while (x < 3 { x = x + 1; }",
		"x = ; y = 2;",
		"if (x) { y = 1; ",
		"x = 1;; y = 2;",
		"while (x) { y = 1 }\nz = 3;",
	} {
		t.Run(source, func(t *testing.T) {
			result, err := Check(source)
			require.NoError(t, err)
			require.True(t, result.Matched)
			assert.NotEmpty(t, result.Errors)
			assert.Equal(t, len([]rune(source)), result.Root.End())

			// leaves never hold text that isn't in the source
			var text strings.Builder
			for _, leaf := range result.Root.Leaves() {
				text.WriteString(leaf.Text())
			}
			assert.LessOrEqual(t, len(text.String()), len(source))
		})
	}

	t.Run("valid programs have no errors", func(t *testing.T) {
		result, err := Check("a = 1;\nif (a == 1) { b = a; }")
		require.NoError(t, err)
		assert.Empty(t, result.Errors)
	})
}
