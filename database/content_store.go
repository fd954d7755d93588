package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spark-feed/models"
	"spark-feed/utils"

	"gorm.io/gorm"
)

// ContentStore serves spots and sparks from SQLite. Radius filters run in two
// steps: a bounding box in SQL, then the exact Haversine distance here, so
// counts and pages only ever include items inside the radius.
type ContentStore struct {
	db    *gorm.DB
	users *UserDirectory
}

// NewContentStore creates a content store
func NewContentStore(db *gorm.DB, users *UserDirectory) *ContentStore {
	return &ContentStore{db: db, users: users}
}

// =============================================================================
// Spots
// =============================================================================

// FindSpots returns one page of spots matching filter and the total match count
func (s *ContentStore) FindSpots(ctx context.Context, filter models.SpotFilter) ([]models.SpotRow, int64, error) {
	var (
		spots     []models.Spot
		distances []*float64
		total     int64
	)

	if filter.Geo == nil {
		if err := s.spotQuery(ctx, filter).Count(&total).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to count spots: %w", err)
		}
		q := orderSpots(s.spotQuery(ctx, filter), filter.Sort)
		if err := paginate(q, filter.Limit, filter.Offset).Find(&spots).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to fetch spots: %w", err)
		}
		distances = make([]*float64, len(spots))
	} else {
		var candidates []models.Spot
		q := orderSpots(s.spotQuery(ctx, filter), filter.Sort)
		if err := q.Find(&candidates).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to fetch spots: %w", err)
		}
		located := make([]locatedSpot, len(candidates))
		for i, sp := range candidates {
			located[i] = locatedSpot{Spot: sp}
		}
		within := utils.FilterByDistance[locatedSpot](located, filter.Geo.Center.Lat, filter.Geo.Center.Lon, filter.Geo.RadiusMeters)
		if filter.Sort == models.SpotSortDistanceAsc {
			utils.SortByDistance[locatedSpot](within)
		}
		total = int64(len(within))
		for _, m := range utils.Paginate(within, filter.Offset, pageLimit(filter.Limit, len(within))) {
			spots = append(spots, m.Spot)
			d := m.distance
			distances = append(distances, &d)
		}
	}

	rows, err := s.spotRows(ctx, spots, distances)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindSpotsByIDs looks up spots regardless of status
func (s *ContentStore) FindSpotsByIDs(ctx context.Context, ids []string) ([]models.SpotRow, error) {
	if len(ids) == 0 {
		return []models.SpotRow{}, nil
	}
	var spots []models.Spot
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch spots by id: %w", err)
	}
	return s.spotRows(ctx, spots, make([]*float64, len(spots)))
}

// ExpireSpots marks active spots whose expiry is before now as expired
func (s *ContentStore) ExpireSpots(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Spot{}).
		Where("status = ? AND expires_at < ?", models.SpotStatusActive, now.UTC()).
		UpdateColumn("status", models.SpotStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire spots: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *ContentStore) spotQuery(ctx context.Context, f models.SpotFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Spot{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.OwnerID != "" {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	if f.ExcludeOwnerID != "" {
		q = q.Where("user_id <> ?", f.ExcludeOwnerID)
	}
	q = applyTimeRange(q, f.CreatedFrom, f.CreatedBefore)
	q = applyBoundingBox(q, f.Geo)
	return applyTagFilter(q, f.AnyTags)
}

func orderSpots(q *gorm.DB, sortBy models.SpotSort) *gorm.DB {
	switch sortBy {
	case models.SpotSortLikesDesc:
		return q.Order("likes DESC").Order("created_at DESC").Order("id")
	default:
		// distance ordering happens after the exact radius check
		return q.Order("created_at DESC").Order("id")
	}
}

// spotRows joins spots with their authors
func (s *ContentStore) spotRows(ctx context.Context, spots []models.Spot, distances []*float64) ([]models.SpotRow, error) {
	ids := make([]string, len(spots))
	for i, sp := range spots {
		ids[i] = sp.UserID
	}
	authors, err := s.users.authors(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]models.SpotRow, len(spots))
	for i, sp := range spots {
		rows[i] = models.SpotRow{
			Spot:           sp,
			Author:         authors[sp.UserID],
			DistanceMeters: distances[i],
		}
	}
	return rows, nil
}

// =============================================================================
// Sparks
// =============================================================================

// FindSparks returns one page of sparks matching filter, newest first, and the total match count
func (s *ContentStore) FindSparks(ctx context.Context, filter models.SparkFilter) ([]models.SparkRow, int64, error) {
	var (
		sparks    []models.Spark
		distances []*float64
		total     int64
	)

	if filter.Geo == nil {
		if err := s.sparkQuery(ctx, filter).Count(&total).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to count sparks: %w", err)
		}
		q := s.sparkQuery(ctx, filter).Order("created_at DESC").Order("id")
		if err := paginate(q, filter.Limit, filter.Offset).Find(&sparks).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to fetch sparks: %w", err)
		}
		distances = make([]*float64, len(sparks))
	} else {
		var candidates []models.Spark
		q := s.sparkQuery(ctx, filter).Order("created_at DESC").Order("id")
		if err := q.Find(&candidates).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to fetch sparks: %w", err)
		}
		located := make([]locatedSpark, len(candidates))
		for i, sp := range candidates {
			located[i] = locatedSpark{Spark: sp}
		}
		within := utils.FilterByDistance[locatedSpark](located, filter.Geo.Center.Lat, filter.Geo.Center.Lon, filter.Geo.RadiusMeters)
		total = int64(len(within))
		for _, m := range utils.Paginate(within, filter.Offset, pageLimit(filter.Limit, len(within))) {
			sparks = append(sparks, m.Spark)
			d := m.distance
			distances = append(distances, &d)
		}
	}

	ids := make([]string, 0, 2*len(sparks))
	for _, sp := range sparks {
		ids = append(ids, sp.User1ID, sp.User2ID)
	}
	authors, err := s.users.authors(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]models.SparkRow, len(sparks))
	for i, sp := range sparks {
		rows[i] = models.SparkRow{
			Spark:          sp,
			User1:          authors[sp.User1ID],
			User2:          authors[sp.User2ID],
			DistanceMeters: distances[i],
		}
	}
	return rows, total, nil
}

func (s *ContentStore) sparkQuery(ctx context.Context, f models.SparkFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Spark{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.ParticipantID != "" {
		q = q.Where("(user1_id = ? OR user2_id = ?)", f.ParticipantID, f.ParticipantID)
	}
	q = applyTimeRange(q, f.CreatedFrom, f.CreatedBefore)
	return applyBoundingBox(q, f.Geo)
}

// =============================================================================
// Query Building Helpers
// =============================================================================

// applyTimeRange adds [from, before) on created_at; zero bounds are ignored
func applyTimeRange(q *gorm.DB, from, before time.Time) *gorm.DB {
	return applyTimeRangeOn(q, "created_at", from, before)
}

func applyTimeRangeOn(q *gorm.DB, column string, from, before time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where(column+" >= ?", from.UTC())
	}
	if !before.IsZero() {
		q = q.Where(column+" < ?", before.UTC())
	}
	return q
}

// applyBoundingBox prefilters rows to the rectangle around a radius filter
func applyBoundingBox(q *gorm.DB, geo *models.GeoFilter) *gorm.DB {
	if geo == nil {
		return q
	}
	box := utils.BoundingBoxAround(geo.Center.Lat, geo.Center.Lon, geo.RadiusMeters)
	q = q.Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)

	if !box.CrossesAntimeridian() {
		return q.Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	}
	minLon, maxLon := box.MinLon, box.MaxLon
	if minLon < -180 {
		minLon += 360
	} else {
		maxLon -= 360
	}
	return q.Where("(longitude >= ? OR longitude <= ?)", minLon, maxLon)
}

// applyTagFilter keeps rows carrying at least one of tags. instr matches the
// delimited tag byte for byte, so case differs and % or _ are literals.
func applyTagFilter(q *gorm.DB, tags []string) *gorm.DB {
	var clauses []string
	var args []interface{}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		clauses = append(clauses, "instr(tags, ?) > 0")
		args = append(args, ","+t+",")
	}
	if len(clauses) == 0 {
		return q
	}
	return q.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// paginate applies limit/offset; a limit of zero means no limit
func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

// pageLimit turns "zero means unlimited" into an explicit count
func pageLimit(limit, available int) int {
	if limit <= 0 {
		return available
	}
	return limit
}

// locatedSpot carries the exact distance of a radius candidate
type locatedSpot struct {
	models.Spot
	distance float64
}

func (l locatedSpot) GetLatitude() float64 { return l.Latitude }
func (l locatedSpot) GetLongitude() float64 { return l.Longitude }
func (l locatedSpot) GetDistance() float64 { return l.distance }
func (l *locatedSpot) SetDistance(d float64) { l.distance = d }

type locatedSpark struct {
	models.Spark
	distance float64
}

func (l locatedSpark) GetLatitude() float64 { return l.Latitude }
func (l locatedSpark) GetLongitude() float64 { return l.Longitude }
func (l locatedSpark) GetDistance() float64 { return l.distance }
func (l *locatedSpark) SetDistance(d float64) { l.distance = d }

type locatedInteraction struct {
	models.Interaction
	distance float64
}

func (l locatedInteraction) GetLatitude() float64 { return l.Latitude }
func (l locatedInteraction) GetLongitude() float64 { return l.Longitude }
func (l locatedInteraction) GetDistance() float64 { return l.distance }
func (l *locatedInteraction) SetDistance(d float64) { l.distance = d }
