package taskchain

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// DefaultViewCacheSize is the number of views a ViewCache keeps by default.
const DefaultViewCacheSize = 64

// ViewCache memoizes the task-chain view of a Chain.
//
// Entries are keyed by a structural hash of everything the view depends on
// or returns: the selected task, the ROI and every field of every annotation,
// shape coordinates and label scores included. Two calls with structurally
// equal inputs share one View, so the returned value must not be modified.
//
// ViewCache is safe for concurrent use.
type ViewCache struct {
	chain Chain
	views *lru.Cache[uint64, View]
}

// NewViewCache creates a cache for chain holding up to size views.
func NewViewCache(chain Chain, size int) (*ViewCache, error) {
	views, err := lru.New[uint64, View](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create view cache: %w", err)
	}
	return &ViewCache{chain: chain, views: views}, nil
}

// View returns the inputs, outputs and global annotation of selected,
// computing them only when no structurally equal request was seen before.
// Annotations that cannot be hashed (NaN coordinates) bypass the cache.
func (vc *ViewCache) View(annotations []annotation.Annotation, selected *annotation.Task, roi geometry.Rect) View {
	key, ok := viewKey(annotations, selected, roi)
	if ok {
		if view, hit := vc.views.Get(key); hit {
			return view
		}
	}

	view := vc.chain.InputsOutputs(annotations, selected)
	view.Global = vc.chain.GlobalAnnotations(annotations, roi, selected)
	if ok {
		vc.views.Add(key, view)
	}
	return view
}

// Len returns the number of cached views.
func (vc *ViewCache) Len() int {
	return vc.views.Len()
}

// Purge drops every cached view.
func (vc *ViewCache) Purge() {
	vc.views.Purge()
}

func viewKey(annotations []annotation.Annotation, selected *annotation.Task, roi geometry.Rect) (uint64, bool) {
	d := xxhash.New()
	enc := json.NewEncoder(d)

	if selected != nil {
		writeString(d, selected.ID)
	}
	writeString(d, "|")
	_, _ = d.Write(appendRect(nil, roi))

	for _, a := range annotations {
		if a.Shape != nil {
			writeString(d, string(a.Shape.Type()))
		}
		if err := enc.Encode(a); err != nil {
			return 0, false
		}
	}

	return d.Sum64(), true
}

func writeString(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(s)
	_, _ = d.Write([]byte{0})
}

func appendRect(buf []byte, r geometry.Rect) []byte {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}
