package asset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kunalpal97/ar-indoor-nav/internal/scene"
	"github.com/qmuntal/gltf"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrEmptyAsset is returned when an asset has no scene content to instantiate.
var ErrEmptyAsset = errors.New("asset has no nodes")

// Asset is a parsed glTF/GLB document.
type Asset struct {
	ID  string
	Doc *gltf.Document
}

// Loader reads glTF assets from disk and caches them by ID.
type Loader struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Asset
}

// NewLoader creates a loader resolving relative IDs against dir
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		cache: make(map[string]*Asset),
	}
}

// Path returns the file an asset ID resolves to
func (l *Loader) Path(id string) string {
	if filepath.IsAbs(id) || l.dir == "" {
		return id
	}
	return filepath.Join(l.dir, id)
}

// LoadAsset parses the asset, honouring ctx cancellation. Parsed documents are cached;
// failures are not.
func (l *Loader) LoadAsset(ctx context.Context, id string) (*Asset, error) {
	l.mu.Lock()
	if a, ok := l.cache[id]; ok {
		l.mu.Unlock()
		return a, nil
	}
	l.mu.Unlock()

	type result struct {
		doc *gltf.Document
		err error
	}
	ch := make(chan result, 1)
	go func() {
		doc, err := gltf.Open(l.Path(id))
		ch <- result{doc, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("loading %s: %w", id, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("loading %s: %w", id, r.err)
		}
		a := &Asset{ID: id, Doc: r.doc}
		l.mu.Lock()
		l.cache[id] = a
		l.mu.Unlock()
		return a, nil
	}
}

// CreateInstance builds a scene subtree from the asset's default scene.
func (l *Loader) CreateInstance(a *Asset) (*scene.Node, error) {
	if a == nil || a.Doc == nil {
		return nil, errors.New("nil asset")
	}
	doc := a.Doc

	idx := 0
	if doc.Scene != nil {
		idx = *doc.Scene
	}
	if idx < 0 || idx >= len(doc.Scenes) || len(doc.Scenes[idx].Nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", a.ID, ErrEmptyAsset)
	}

	root := scene.NewNode("model:" + a.ID)
	visited := make(map[int]bool)
	for _, ni := range doc.Scenes[idx].Nodes {
		child, err := buildNode(doc, ni, visited)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.ID, err)
		}
		root.Append(child)
	}
	return root, nil
}

func buildNode(doc *gltf.Document, idx int, visited map[int]bool) (*scene.Node, error) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if visited[idx] {
		return nil, fmt.Errorf("node %d referenced twice", idx)
	}
	visited[idx] = true

	src := doc.Nodes[idx]
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}
	n := scene.NewNode(name)
	n.Position = r3.Vec{X: src.Translation[0], Y: src.Translation[1], Z: src.Translation[2]}

	for _, ci := range src.Children {
		child, err := buildNode(doc, ci, visited)
		if err != nil {
			return nil, err
		}
		n.Append(child)
	}
	return n, nil
}
