package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/nsghealth/internal/auth"
)

func TestGetStatus_Empty(t *testing.T) {
	a, _, _, _ := newTestApp(t, "")
	if got := a.getStatus(); got != "" {
		t.Fatalf("want empty status, got %q", got)
	}
}

func TestGetStatus_SignedIn(t *testing.T) {
	a, fa, _, _ := newTestApp(t, "")
	fa.user = &auth.User{Email: "jane@example.com", Role: auth.RolePharmacist}
	assert.Equal(t, "(jane@example.com pharmacist)", a.getStatus())
}

func TestLineReader_LeavesRestForPrompts(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("sos\nmy answer\nexit\n"))
	sc := bufio.NewScanner(lineReader{r})

	require.True(t, sc.Scan())
	assert.Equal(t, "sos", sc.Text())

	answer, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "my answer\n", answer)

	require.True(t, sc.Scan())
	assert.Equal(t, "exit", sc.Text())
	assert.False(t, sc.Scan())
}
