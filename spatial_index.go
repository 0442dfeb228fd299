package main

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// siteTolerance pads each site's point into a tiny rectangle for the R-tree
const siteTolerance = 0.01

// SiteEntry wraps a launch site for R-tree storage
type SiteEntry struct {
	Site  LaunchSite
	Order int // load order, breaks distance ties
	BBox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *SiteEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// SiteIndex answers nearest-launch-site queries in grid space
type SiteIndex struct {
	tree  *rtreego.Rtree
	sites []LaunchSite
}

// NewSiteIndex indexes sites by their cell position
func NewSiteIndex(sites []LaunchSite) *SiteIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for i, site := range sites {
		bbox, err := rtreego.NewRect(
			rtreego.Point{float64(site.Cell.Row) - siteTolerance, float64(site.Cell.Col) - siteTolerance},
			[]float64{2 * siteTolerance, 2 * siteTolerance},
		)
		if err != nil {
			continue
		}
		tree.Insert(&SiteEntry{Site: site, Order: i, BBox: bbox})
	}

	return &SiteIndex{tree: tree, sites: sites}
}

// Len returns the number of indexed sites
func (si *SiteIndex) Len() int {
	return si.tree.Size()
}

// Sites returns the indexed sites in load order
func (si *SiteIndex) Sites() []LaunchSite {
	return si.sites
}

// Nearest returns up to k sites ordered by straight-line grid distance to c,
// equal distances in load order. k <= 0 returns every site.
func (si *SiteIndex) Nearest(c Cell, k int) []LaunchSite {
	n := si.Len()
	if n == 0 {
		return nil
	}
	if k <= 0 || k > n {
		k = n
	}

	// the tree ranks by distance to the padded rectangles, so rank every
	// site exactly and cut to k afterwards
	results := si.tree.NearestNeighbors(n, rtreego.Point{float64(c.Row), float64(c.Col)})
	entries := make([]*SiteEntry, 0, len(results))
	for _, item := range results {
		if item == nil {
			continue
		}
		entries = append(entries, item.(*SiteEntry))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Site.Cell.Distance(c), entries[j].Site.Cell.Distance(c)
		if di != dj {
			return di < dj
		}
		return entries[i].Order < entries[j].Order
	})

	if len(entries) > k {
		entries = entries[:k]
	}

	sites := make([]LaunchSite, len(entries))
	for i, entry := range entries {
		sites[i] = entry.Site
	}
	return sites
}
