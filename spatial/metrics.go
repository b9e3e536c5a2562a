package spatial

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	categoryLabel = "category"
)

var (
	spatialTrackedPoints = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spatial_tracked_points",
		Help: "The number of points currently held by a spatial tree.",
	}, []string{
		categoryLabel,
	})

	spatialPointPatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spatial_point_patches",
		Help: "The number of point level patches (remove and reinsert pairs) applied to spatial trees.",
	}, []string{
		categoryLabel,
	})

	spatialSkippedMoves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spatial_skipped_moves",
		Help: "The number of entity movements ignored for being below the movement threshold.",
	}, []string{
		categoryLabel,
	})

	spatialRecreates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spatial_recreates",
		Help: "The number of bulk tree recreations.",
	}, []string{
		categoryLabel,
	})
)
