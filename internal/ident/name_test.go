package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameSymbolAndQualified(t *testing.T) {
	n := New("foo", "Bar", "Baz")
	assert.Equal(t, "foo_Bar_Baz", n.Symbol())
	assert.Equal(t, "foo.Bar.Baz", n.Qualified())
}

func TestFromDottedStripsLeadingDot(t *testing.T) {
	n := FromDotted(".pkg.Outer.Inner")
	assert.Equal(t, []string{"pkg", "Outer", "Inner"}, n.Parts())
}

func TestAppendAndJoinAreImmutable(t *testing.T) {
	base := New("a", "b")
	appended := base.Append("c")

	require.Equal(t, []string{"a", "b"}, base.Parts())
	assert.Equal(t, []string{"a", "b", "c"}, appended.Parts())

	joined := base.Join(New("x", "y"))
	assert.Equal(t, []string{"a", "b", "x", "y"}, joined.Parts())
	assert.Equal(t, []string{"a", "b"}, base.Parts())
}

func TestEqual(t *testing.T) {
	assert.True(t, New("a", "b").Equal(New("a", "b")))
	assert.False(t, New("a", "b").Equal(New("a", "c")))
	assert.False(t, New("a").Equal(New("a", "b")))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "abc", Initials([]string{"alpha", "bravo", "charlie"}))
}

func TestMangleFlatten(t *testing.T) {
	assert.Equal(t, ".Inner", Mangle(Flatten, "pkg", ".pkg.Outer.Inner"))
}

func TestMangleStripPackage(t *testing.T) {
	assert.Equal(t, ".Outer.Inner", Mangle(StripPackage, "pkg", ".pkg.Outer.Inner"))
	assert.Equal(t, ".other.Thing", Mangle(StripPackage, "pkg", ".other.Thing"))
}

func TestMangleNoneIsIdentity(t *testing.T) {
	assert.Equal(t, ".pkg.Outer.Inner", Mangle(None, "pkg", ".pkg.Outer.Inner"))
}

func TestManglePackageInitials(t *testing.T) {
	assert.Equal(t, ".fb.Thing", Mangle(PackageInitials, "foo.bar", ".foo.bar.Thing"))
}

func TestBaseName(t *testing.T) {
	assert.True(t, BaseName(None, "").IsZero())
	assert.Equal(t, []string{"foo", "bar"}, BaseName(None, "foo.bar").Parts())
	assert.Equal(t, []string{"fb"}, BaseName(PackageInitials, "foo.bar").Parts())
}

func TestCreate(t *testing.T) {
	base := New("pkg")
	local := New("Outer", "Inner")

	assert.Equal(t, "pkg_Outer_Inner", Create(None, base, local).Symbol())
	assert.Equal(t, "Outer_Inner", Create(StripPackage, base, local).Symbol())
	assert.Equal(t, "Inner", Create(Flatten, base, local).Symbol())
}
