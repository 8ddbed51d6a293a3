package git_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/monosync/internal/adapters/git"
)

const samplePatch = `diff --git a/added.txt b/added.txt
new file mode 100644
index 0000000000000000000000000000000000000000..e69de29bb2d1d6434b8b29ae775ad8c2e48c5391
diff --git a/gone.txt b/gone.txt
deleted file mode 100644
index 8baef1b4abc478178b004d62031cf7fe6db6f903..0000000000000000000000000000000000000000
--- a/gone.txt
+++ /dev/null
@@ -1 +0,0 @@
-abc
diff --git a/old.txt b/new.txt
similarity index 100%
rename from old.txt
rename to new.txt
diff --git a/edit.txt b/edit.txt
index 5626abf0f72e58d7a153368ba57db4c673c0e171..f719efd430d52bcfc8566a43b2eb655688d38871 100644
--- a/edit.txt
+++ b/edit.txt
@@ -1 +1 @@
-one
+two
`

func TestSummarizePatch(t *testing.T) {
	files, err := git.SummarizePatch([]byte(samplePatch))
	require.NoError(t, err)
	require.Len(t, files, 4)

	assert.Equal(t, "add", files[0].Op)
	assert.Equal(t, "added.txt", files[0].Path())
	assert.Equal(t, "delete", files[1].Op)
	assert.Equal(t, "gone.txt", files[1].Path())
	assert.Equal(t, "rename", files[2].Op)
	assert.Equal(t, "old.txt", files[2].OldPath)
	assert.Equal(t, "new.txt", files[2].Path())
	assert.Equal(t, "modify", files[3].Op)
}

func TestSummarizePatch_Garbage(t *testing.T) {
	files, err := git.SummarizePatch([]byte("not a patch\n"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
