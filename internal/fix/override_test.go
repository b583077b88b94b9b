package fix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classmend/internal/classfile"
	"classmend/internal/resolve"
)

type srcMap map[string][]byte

func (s srcMap) ReadClass(name string) ([]byte, bool, error) {
	data, ok := s[name]
	return data, ok, nil
}

func sourceOf(classes ...*classfile.Class) srcMap {
	s := srcMap{}
	for _, c := range classes {
		s[c.Name] = classfile.Encode(c)
	}
	return s
}

func newAdder(src resolve.Source) *OverrideAdder {
	return &OverrideAdder{
		Resolver: resolve.New(src, nil),
		Bridges:  CodeBridgeResolver{},
		Marker:   DefaultMarker,
	}
}

func iface(t *testing.T, name string, methods ...string) *classfile.Class {
	t.Helper()
	c, err := classfile.NewClass(name, "java/lang/Object",
		classfile.AccPublic|classfile.AccInterface|classfile.AccAbstract)
	require.NoError(t, err)
	for _, m := range methods {
		_, err := c.AddMethod(m, "()V", classfile.AccPublic|classfile.AccAbstract)
		require.NoError(t, err)
	}
	return c
}

func markerCount(m *classfile.Method) int {
	n := 0
	for _, a := range m.InvisibleAnns {
		if a.Is(DefaultMarker) {
			n++
		}
	}
	return n
}

func TestMarkerAddedForImplementedMethod(t *testing.T) {
	base := iface(t, "com/example/Base", "run")
	child, err := classfile.NewClass("com/example/Child", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInterface("com/example/Base"))
	run, err := child.AddMethod("run", "()V", classfile.AccPublic)
	require.NoError(t, err)

	added, err := newAdder(sourceOf(base)).Apply(child)
	require.NoError(t, err)
	assert.Equal(t, []string{"run()V"}, added)
	assert.Equal(t, 1, markerCount(run))
}

func TestMarkerNeverDuplicated(t *testing.T) {
	base := iface(t, "com/example/Base", "run")
	child, err := classfile.NewClass("com/example/Child", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInterface("com/example/Base"))
	run, err := child.AddMethod("run", "()V", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInvisibleAnnotation(run, DefaultMarker))

	added, err := newAdder(sourceOf(base)).Apply(child)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, 1, markerCount(run))
}

func TestSuperclassChainAtEveryDepth(t *testing.T) {
	deep := iface(t, "com/example/Deep", "close")
	mid, err := classfile.NewClass("com/example/Mid", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, mid.AddInterface("com/example/Deep"))
	_, err = mid.AddMethod("step", "()V", classfile.AccPublic)
	require.NoError(t, err)

	child, err := classfile.NewClass("com/example/Child", "com/example/Mid", classfile.AccPublic)
	require.NoError(t, err)
	step, err := child.AddMethod("step", "()V", classfile.AccPublic)
	require.NoError(t, err)
	closeM, err := child.AddMethod("close", "()V", classfile.AccPublic)
	require.NoError(t, err)

	added, err := newAdder(sourceOf(deep, mid)).Apply(child)
	require.NoError(t, err)
	assert.Len(t, added, 2)
	assert.Equal(t, 1, markerCount(step))
	assert.Equal(t, 1, markerCount(closeM), "interface reached through the superclass")
}

func TestUnresolvableAncestorToleratedScenarioE(t *testing.T) {
	base := iface(t, "com/example/Base", "run")
	child, err := classfile.NewClass("com/example/Child", "com/example/Missing", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInterface("com/example/Base"))
	run, err := child.AddMethod("run", "()V", classfile.AccPublic)
	require.NoError(t, err)
	orphan, err := child.AddMethod("orphan", "()V", classfile.AccPublic)
	require.NoError(t, err)

	added, err := newAdder(sourceOf(base)).Apply(child)
	require.NoError(t, err, "gap in the hierarchy is not an error")
	assert.Equal(t, []string{"run()V"}, added)
	assert.Equal(t, 1, markerCount(run))
	assert.Equal(t, 0, markerCount(orphan))
}

func TestExclusions(t *testing.T) {
	base, err := classfile.NewClass("com/example/Base", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	_, err = base.AddMethod("helper", "()V", classfile.AccPublic|classfile.AccStatic)
	require.NoError(t, err)
	_, err = base.AddMethod("hidden", "()V", classfile.AccPrivate)
	require.NoError(t, err)
	_, err = base.AddMethod(classfile.NameInit, "()V", classfile.AccPublic)
	require.NoError(t, err)

	child, err := classfile.NewClass("com/example/Child", "com/example/Base", classfile.AccPublic)
	require.NoError(t, err)
	_, err = child.AddMethod("helper", "()V", classfile.AccPublic|classfile.AccStatic)
	require.NoError(t, err)
	_, err = child.AddMethod("hidden", "()V", classfile.AccPrivate)
	require.NoError(t, err)
	_, err = child.AddMethod(classfile.NameInit, "()V", classfile.AccPublic)
	require.NoError(t, err)

	added, err := newAdder(sourceOf(base)).Apply(child)
	require.NoError(t, err)
	assert.Empty(t, added, "static, private, and initializer methods never participate")
}

func TestBridgeRedirectsMarkerToDelegate(t *testing.T) {
	base := iface(t, "com/example/Base", "run")
	child, err := classfile.NewClass("com/example/Child", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInterface("com/example/Base"))

	bridge, err := child.AddMethod("run", "()V",
		classfile.AccPublic|classfile.AccBridge|classfile.AccSynthetic)
	require.NoError(t, err)
	impl, err := child.AddMethod("runRenamed", "()V", classfile.AccPublic)
	require.NoError(t, err)

	target, err := child.Pool.AddMethodref("com/example/Child", "runRenamed", "()V")
	require.NoError(t, err)
	code := []byte{0x2a, 0xb6, byte(target >> 8), byte(target), 0xb1} // aload_0; invokevirtual; return
	require.NoError(t, child.AddCode(bridge, code))

	added, err := newAdder(sourceOf(base)).Apply(child)
	require.NoError(t, err)
	assert.Equal(t, []string{"runRenamed()V"}, added)
	assert.Equal(t, 1, markerCount(impl), "marker lands on the method carrying the logic")
	assert.Equal(t, 0, markerCount(bridge))
}

func TestBridgeWithMissingDelegateMarksItself(t *testing.T) {
	base := iface(t, "com/example/Base", "run")
	child, err := classfile.NewClass("com/example/Child", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInterface("com/example/Base"))

	bridge, err := child.AddMethod("run", "()V",
		classfile.AccPublic|classfile.AccBridge|classfile.AccSynthetic)
	require.NoError(t, err)
	// Delegates to a method that was stripped from the class.
	target, err := child.Pool.AddMethodref("com/example/Child", "gone", "()V")
	require.NoError(t, err)
	require.NoError(t, child.AddCode(bridge, []byte{0x2a, 0xb6, byte(target >> 8), byte(target), 0xb1}))

	added, err := newAdder(sourceOf(base)).Apply(child)
	require.NoError(t, err)
	assert.Equal(t, []string{"run()V"}, added)
	assert.Equal(t, 1, markerCount(bridge))
}

func TestNoMarkerWithoutAncestorMatch(t *testing.T) {
	child, err := classfile.NewClass("com/example/Child", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	run, err := child.AddMethod("run", "()V", classfile.AccPublic)
	require.NoError(t, err)

	added, err := newAdder(srcMap{}).Apply(child)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, 0, markerCount(run))
}

func TestInterfaceFanOut(t *testing.T) {
	a := iface(t, "com/example/A", "left")
	b := iface(t, "com/example/B", "right")
	child, err := classfile.NewClass("com/example/Child", "java/lang/Object", classfile.AccPublic)
	require.NoError(t, err)
	require.NoError(t, child.AddInterface("com/example/A"))
	require.NoError(t, child.AddInterface("com/example/B"))
	_, err = child.AddMethod("left", "()V", classfile.AccPublic)
	require.NoError(t, err)
	_, err = child.AddMethod("right", "()V", classfile.AccPublic)
	require.NoError(t, err)

	added, err := newAdder(sourceOf(a, b)).Apply(child)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"left()V", "right()V"}, added)
}
