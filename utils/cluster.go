package utils

import "sort"

// Point is a coordinate fed into clustering
type Point struct {
	Lat float64
	Lon float64
}

// Cluster is a group of points around a running centroid
type Cluster struct {
	Centroid Point
	Members  []Point
}

// Size returns the number of member points
func (c *Cluster) Size() int {
	return len(c.Members)
}

// add appends p and recomputes the centroid as the arithmetic mean of all members
func (c *Cluster) add(p Point) {
	c.Members = append(c.Members, p)
	var sumLat, sumLon float64
	for _, m := range c.Members {
		sumLat += m.Lat
		sumLon += m.Lon
	}
	n := float64(len(c.Members))
	c.Centroid = Point{Lat: sumLat / n, Lon: sumLon / n}
}

// ClusterPoints groups points greedily: each point joins the first existing
// cluster whose centroid is within radiusMeters, otherwise it starts a new one.
// Clusters are returned largest first; equal sizes keep creation order.
// Cost is O(n·k) for k clusters, which is fine for a day's worth of points.
func ClusterPoints(points []Point, radiusMeters float64) []Cluster {
	clusters := []*Cluster{}

	for _, p := range points {
		var target *Cluster
		for _, c := range clusters {
			if HaversineMeters(c.Centroid.Lat, c.Centroid.Lon, p.Lat, p.Lon) <= radiusMeters {
				target = c
				break
			}
		}
		if target == nil {
			target = &Cluster{}
			clusters = append(clusters, target)
		}
		target.add(p)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size() > clusters[j].Size()
	})

	out := make([]Cluster, len(clusters))
	for i, c := range clusters {
		out[i] = *c
	}
	return out
}
