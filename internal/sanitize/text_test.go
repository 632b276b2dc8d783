package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextStripsTags(t *testing.T) {
	require.Equal(t, "Jazz Night", Text("<b>Jazz Night</b>"))
	require.Equal(t, "alert(1)", Text("<script>alert(1)</script>"))
	require.Equal(t, "Main Hall", Text("  Main Hall  "))
}

func TestDescriptionKeepsSafeFormatting(t *testing.T) {
	require.Equal(t, "<p>Doors at <b>19:00</b></p>", Description("<p>Doors at <b>19:00</b></p>"))
}

func TestDescriptionRemovesScripts(t *testing.T) {
	out := Description(`<p>hi</p><script>alert(1)</script>`)
	require.Equal(t, "<p>hi</p>", out)
}
