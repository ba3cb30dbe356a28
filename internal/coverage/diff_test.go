package coverage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/calc/calc.go b/calc/calc.go
index 1111111..2222222 100644
--- a/calc/calc.go
+++ b/calc/calc.go
@@ -3,3 +3,4 @@ package calc
 func Add(a, b int) int {
-	return a+b
+	// sum
+	return a + b
 }
@@ -10 +11 @@ func Sub(a, b int) int {
-	return 0
+	return a - b
diff --git a/gone.go b/gone.go
deleted file mode 100644
--- a/gone.go
+++ /dev/null
@@ -1,2 +0,0 @@
-package gone
-
diff --git a/new.go b/new.go
new file mode 100644
--- /dev/null
+++ b/new.go
@@ -0,0 +1,2 @@
+package calc
+++ not a header
`

func TestParseUnifiedDiff(t *testing.T) {
	modified, err := ParseUnifiedDiff(strings.NewReader(sampleDiff))
	require.NoError(t, err)

	assert.Equal(t, map[string][]int{
		"calc/calc.go": {4, 5, 11},
		"new.go":       {1, 2},
	}, modified)
}

func TestParseUnifiedDiff_InvalidHunk(t *testing.T) {
	_, err := ParseUnifiedDiff(strings.NewReader("+++ b/a.go\n@@ -x +1 @@\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid hunk header")
}

func TestParseUnifiedDiff_Empty(t *testing.T) {
	modified, err := ParseUnifiedDiff(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, modified)
}
