package asset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pinAsset = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "pin", "children": [1]},
    {"name": "head", "translation": [0, 0.5, 0]}
  ]
}`

const emptyAsset = `{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": []}]
}`

func writeAsset(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestLoader_LoadAndInstantiate(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "pin.gltf", pinAsset)
	l := NewLoader(dir)

	a, err := l.LoadAsset(context.Background(), "pin.gltf")
	require.NoError(t, err)
	assert.Equal(t, "pin.gltf", a.ID)

	root, err := l.CreateInstance(a)
	require.NoError(t, err)
	assert.Equal(t, "model:pin.gltf", root.Name)

	pin := root.Find("pin")
	require.NotNil(t, pin)
	head := root.Find("head")
	require.NotNil(t, head)
	assert.Same(t, pin, head.Parent())
	assert.InDelta(t, 0.5, head.Position.Y, 1e-9)
}

func TestLoader_CachesParsedAssets(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "pin.gltf", pinAsset)
	l := NewLoader(dir)

	first, err := l.LoadAsset(context.Background(), "pin.gltf")
	require.NoError(t, err)
	second, err := l.LoadAsset(context.Background(), "pin.gltf")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestLoader_InstancesAreIndependent(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "pin.gltf", pinAsset)
	l := NewLoader(dir)

	a, err := l.LoadAsset(context.Background(), "pin.gltf")
	require.NoError(t, err)

	one, err := l.CreateInstance(a)
	require.NoError(t, err)
	two, err := l.CreateInstance(a)
	require.NoError(t, err)

	assert.NotSame(t, one, two)
	assert.NotSame(t, one.Find("pin"), two.Find("pin"))
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(t.TempDir())

	_, err := l.LoadAsset(context.Background(), "missing.glb")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing.glb")
}

func TestLoader_EmptyAssetCannotBeInstantiated(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "empty.gltf", emptyAsset)
	l := NewLoader(dir)

	a, err := l.LoadAsset(context.Background(), "empty.gltf")
	require.NoError(t, err)

	_, err = l.CreateInstance(a)
	assert.ErrorIs(t, err, ErrEmptyAsset)
}

func TestLoader_NilAsset(t *testing.T) {
	l := NewLoader("")
	_, err := l.CreateInstance(nil)
	assert.Error(t, err)
}

func TestLoader_Path(t *testing.T) {
	l := NewLoader("/assets")
	assert.Equal(t, filepath.Join("/assets", "pin.glb"), l.Path("pin.glb"))
	assert.Equal(t, "/abs/pin.glb", l.Path("/abs/pin.glb"))
	assert.Equal(t, "pin.glb", NewLoader("").Path("pin.glb"))
}
