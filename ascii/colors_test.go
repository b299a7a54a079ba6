package ascii

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sgrParams splits an escape sequence like "\033[1;31m" into its
// parameters.
func sgrParams(t *testing.T, code string) []int {
	t.Helper()
	require.True(t, strings.HasPrefix(code, "\033["), "%q", code)
	require.True(t, strings.HasSuffix(code, "m"), "%q", code)
	var params []int
	for _, p := range strings.Split(code[2:len(code)-1], ";") {
		n, err := strconv.Atoi(p)
		require.NoError(t, err, "%q", code)
		params = append(params, n)
	}
	return params
}

func TestColorCodes(t *testing.T) {
	for name, code := range map[string]string{
		"Reset":   Reset,
		"Red":     Red,
		"Yellow":  Yellow,
		"Green":   Green,
		"Blue":    Blue,
		"Cyan":    Cyan,
		"Gray":    Gray,
		"Orange":  Orange,
		"Gray245": Gray245,
		"Purple":  Purple,
		"Pink":    Pink,
	} {
		t.Run(name, func(t *testing.T) {
			params := sgrParams(t, code)
			for i := 0; i < len(params); i++ {
				switch p := params[i]; {
				case p == 38:
					require.Greater(t, len(params), i+2, "256 color needs two more parameters")
					assert.Equal(t, 5, params[i+1])
					assert.Less(t, params[i+2], 256)
					i += 2
				case p == 0, p == 1:
				case p >= 30 && p <= 37, p >= 90 && p <= 97:
				default:
					t.Errorf("unexpected parameter %d in %q", p, code)
				}
			}
		})
	}
}

func TestPaint(t *testing.T) {
	assert.Equal(t, "x", Paint("", "x"))
	assert.Equal(t, Orange+"x"+Reset, Paint(Orange, "x"))
	assert.Equal(t, "1..2", Color(NoColors.Span, "%d..%d", 1, 2))
	assert.Equal(t, Blue+"Rule"+Reset, Color(DefaultTheme.Label, "%s", "Rule"))
}
