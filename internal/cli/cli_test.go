package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/triage-corpus/internal/artifact"
	"github.com/rcliao/triage-corpus/internal/model"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetArgs(nil)
		resetFlags(RootCmd)
	})
	require.NoError(t, RootCmd.Execute())
	return out.Bytes()
}

// resetFlags restores every flag of cmd and its subcommands to its default,
// so one Execute does not leak values into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestGetDBPath(t *testing.T) {
	dbPath = ""
	t.Setenv("TRIAGE_CORPUS_DB", "/tmp/env.db")
	assert.Equal(t, "/tmp/env.db", getDBPath())

	dbPath = "/tmp/flag.db"
	t.Cleanup(func() { dbPath = "" })
	assert.Equal(t, "/tmp/flag.db", getDBPath())

	dbPath = ""
	t.Setenv("TRIAGE_CORPUS_DB", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".triage-corpus", "datasets.db"), getDBPath())
}

func TestTaxonomyCommand(t *testing.T) {
	out := execute(t, "taxonomy", "--class-info")

	var info model.ClassInfo
	require.NoError(t, json.Unmarshal(out, &info))
	assert.Equal(t, 16, info.NumClasses)
	assert.Equal(t, "cardiac_arrest", info.ClassNames[0])
}

func TestGenerateSaveAndExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "datasets.db")
	outDir := filepath.Join(dir, "data")

	out := execute(t, "generate", "--db", db, "--out", outDir, "--samples", "5", "--seed", "11", "--save")
	var summary struct {
		OK      bool   `json:"ok"`
		Samples int    `json:"samples"`
		RunID   string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(out, &summary))
	assert.True(t, summary.OK)
	require.NotEmpty(t, summary.RunID)

	corpus, err := artifact.ReadCorpus(filepath.Join(outDir, artifact.CorpusFile))
	require.NoError(t, err)
	assert.Len(t, corpus, summary.Samples)

	exportDir := filepath.Join(dir, "export")
	execute(t, "export", summary.RunID, "--db", db, "--out", exportDir)

	for _, name := range []string{artifact.TrainFile, artifact.ValidationFile, artifact.VocabularyFile} {
		want, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err)
		got, err := os.ReadFile(filepath.Join(exportDir, name))
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), name)
	}
}

func TestVocabAndEncodeCommands(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, artifact.CorpusFile)
	require.NoError(t, artifact.WriteJSON(corpusPath, []model.Sample{
		{Text: "burn on hand", Label: 3, Category: "burns"},
		{Text: "bad burn", Label: 3, Category: "burns"},
	}))

	vocabPath := filepath.Join(dir, artifact.VocabularyFile)
	execute(t, "vocab", corpusPath, "--out", vocabPath, "--min-frequency", "1")

	out := execute(t, "encode", "--vocab", vocabPath, "--max-length", "5", "burn", "wound")
	var encoded struct {
		IDs    []int    `json:"ids"`
		Tokens []string `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(out, &encoded))
	assert.Equal(t, []int{2, 4, 1, 3, 0}, encoded.IDs)
	assert.Equal(t, []string{"<START>", "burn", "<UNK>", "<END>"}, encoded.Tokens)
}

func TestResetFlagsClearsSubcommandValues(t *testing.T) {
	dir := t.TempDir()
	execute(t, "generate", "--db", filepath.Join(dir, "datasets.db"), "--out", filepath.Join(dir, "data"),
		"--samples", "3", "--seed", "5")
	resetFlags(RootCmd)

	gen, _, err := RootCmd.Find([]string{"generate"})
	require.NoError(t, err)
	for _, name := range []string{"samples", "seed", "out"} {
		f := gen.Flags().Lookup(name)
		require.NotNil(t, f)
		assert.False(t, f.Changed, name)
		assert.Equal(t, f.DefValue, f.Value.String(), name)
	}
	assert.Empty(t, dbPath)
}

func TestImportWithTaxonomyExportsItsClassInfo(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	require.NoError(t, os.WriteFile("tax.yaml", []byte(`categories:
  - id: 0
    name: burns
    keywords: [burn]
    patterns: ["I have a {symptom}"]
    symptoms: [blister]
  - id: 1
    name: cuts
    keywords: [cut]
    patterns: ["bleeding from a cut"]
`), 0o644))
	require.NoError(t, artifact.WriteJSON("corpus.json", []model.Sample{
		{Text: "burn on hand", Label: 0, Category: "burns"},
		{Text: "bad burn", Label: 0, Category: "burns"},
		{Text: "deep cut", Label: 1, Category: "cuts"},
		{Text: "cut finger", Label: 1, Category: "cuts"},
	}))
	db := filepath.Join(dir, "datasets.db")

	out := execute(t, "import", "corpus.json", "--db", db, "--taxonomy", "tax.yaml")
	var imported struct {
		RunID    string `json:"run_id"`
		Imported int    `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(out, &imported))
	require.NotEmpty(t, imported.RunID)
	assert.Equal(t, 4, imported.Imported)

	// export from a different working directory still finds the taxonomy
	testChdir(t, t.TempDir())
	exportDir := filepath.Join(dir, "export")
	execute(t, "export", imported.RunID, "--db", db, "--out", exportDir)

	info, err := artifact.ReadClassInfo(filepath.Join(exportDir, artifact.ClassInfoFile))
	require.NoError(t, err)
	assert.Equal(t, 2, info.NumClasses)
	assert.Equal(t, []string{"burns", "cuts"}, info.ClassNames)
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
}
