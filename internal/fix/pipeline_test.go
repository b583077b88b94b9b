package fix

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classmend/internal/classfile"
	"classmend/internal/jarx"
)

func writeJar(t *testing.T, path string, dirs []string, files map[string][]byte) {
	t.Helper()
	w, err := jarx.NewWriter(path)
	require.NoError(t, err)
	for _, d := range dirs {
		require.NoError(t, w.WriteDir(d))
	}
	for name, data := range files {
		require.NoError(t, w.WriteFile(name, data))
	}
	require.NoError(t, w.Close())
}

func readJarFiles(t *testing.T, path string) map[string][]byte {
	t.Helper()
	j, err := jarx.Open(path)
	require.NoError(t, err)
	defer j.Close()
	out := make(map[string][]byte)
	for _, f := range j.Entries() {
		if jarx.IsDir(f.Name) {
			out[f.Name] = nil
			continue
		}
		data, err := j.ReadEntry(f.Name)
		require.NoError(t, err)
		out[f.Name] = data
	}
	return out
}

// fixtureJars builds a primary jar holding an enum with a misaligned
// constructor annotation array and a class implementing an interface that
// only the fallback jar can resolve.
func fixtureJars(t *testing.T, dir string) (inPath, refPath string) {
	t.Helper()

	suit := enumWithCtor(t, 3)

	child, err := classfile.NewClass("com/example/Child", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInterface("com/example/Base"))
	_, err = child.AddMethod("run", "()V", classfile.AccPublic)
	require.NoError(t, err)

	base := iface(t, "com/example/Base", "run")

	inPath = filepath.Join(dir, "in.jar")
	refPath = filepath.Join(dir, "ref.jar")
	writeJar(t, inPath,
		[]string{"META-INF/", "com/", "com/example/"},
		map[string][]byte{
			"META-INF/MANIFEST.MF":         []byte("Manifest-Version: 1.0\n"),
			"com/example/Suit.class":       classfile.Encode(suit),
			"com/example/Child.class":      classfile.Encode(child),
			"com/example/notes/readme.txt": []byte("not a class"),
		})
	writeJar(t, refPath, nil, map[string][]byte{
		"com/example/Base.class": classfile.Encode(base),
	})
	return inPath, refPath
}

func TestTransformEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inPath, refPath := fixtureJars(t, dir)
	outPath := filepath.Join(dir, "out.jar")

	rep, err := Transform(inPath, refPath, outPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Classes)
	assert.Equal(t, 2, rep.Resources)
	assert.Equal(t, 3, rep.Directories)
	assert.Equal(t, 1, rep.TrimmedConstructors)
	assert.Equal(t, 1, rep.MarkersAdded)

	in := readJarFiles(t, inPath)
	out := readJarFiles(t, outPath)
	require.Equal(t, len(in), len(out), "same entry shape")

	// Non-class and directory entries unchanged.
	assert.Equal(t, in["META-INF/MANIFEST.MF"], out["META-INF/MANIFEST.MF"])
	assert.Equal(t, in["com/example/notes/readme.txt"], out["com/example/notes/readme.txt"])
	assert.Contains(t, out, "com/example/")

	// Enum constructor array trimmed to the real parameter.
	suit, err := classfile.Parse(out["com/example/Suit.class"])
	require.NoError(t, err)
	pa := suit.Methods[0].VisibleParams
	require.NotNil(t, pa)
	assert.EqualValues(t, 1, pa.Count)
	require.Len(t, pa.Sets, 1)

	// Override marker added against the fallback-resolved interface.
	childOut, err := classfile.Parse(out["com/example/Child.class"])
	require.NoError(t, err)
	run := childOut.Method("run", "()V")
	require.NotNil(t, run)
	assert.True(t, run.HasInvisibleAnnotation(DefaultMarker))
}

func TestTransformIdempotent(t *testing.T) {
	dir := t.TempDir()
	inPath, refPath := fixtureJars(t, dir)
	out1 := filepath.Join(dir, "out1.jar")
	out2 := filepath.Join(dir, "out2.jar")

	_, err := Transform(inPath, refPath, out1, nil)
	require.NoError(t, err)
	rep, err := Transform(out1, refPath, out2, nil)
	require.NoError(t, err)
	assert.Zero(t, rep.TrimmedConstructors)
	assert.Zero(t, rep.MarkersAdded)

	first := readJarFiles(t, out1)
	second := readJarFiles(t, out2)
	require.Equal(t, len(first), len(second))
	for name, data := range first {
		assert.Equal(t, data, second[name], "entry %s", name)
	}
}

func TestTransformReportOnly(t *testing.T) {
	dir := t.TempDir()
	inPath, refPath := fixtureJars(t, dir)

	rep, err := Transform(inPath, refPath, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TrimmedConstructors)
	assert.Equal(t, 1, rep.MarkersAdded)
	require.Len(t, rep.Fixes, 2)
}

func TestTransformAbortsOnUndecodableClass(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.jar")
	writeJar(t, inPath, nil, map[string][]byte{
		"com/example/Broken.class": {0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00},
	})

	_, err := Transform(inPath, "", filepath.Join(dir, "out.jar"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "com/example/Broken.class")
	assert.Contains(t, err.Error(), "com/example/Broken")
}

func TestTransformExcludedPrefixCopiedVerbatim(t *testing.T) {
	dir := t.TempDir()
	suit := enumWithCtor(t, 3)
	suitBytes := classfile.Encode(suit)

	inPath := filepath.Join(dir, "in.jar")
	writeJar(t, inPath, nil, map[string][]byte{
		"lib/com/example/Suit.class": suitBytes,
	})
	outPath := filepath.Join(dir, "out.jar")

	cfg := DefaultConfig()
	cfg.Exclude = []string{"lib/"}
	rep, err := Transform(inPath, "", outPath, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Excluded)
	assert.Zero(t, rep.Classes)

	out := readJarFiles(t, outPath)
	assert.Equal(t, suitBytes, out["lib/com/example/Suit.class"])
}

func TestTransformMissingInputFails(t *testing.T) {
	_, err := Transform(filepath.Join(t.TempDir(), "absent.jar"), "", "", nil)
	require.Error(t, err)
}
