package services

import (
	"context"
	"errors"
	"testing"

	"spark-feed/database"
	"spark-feed/models"
	"spark-feed/utils"
)

func TestInteractionService_RecordInteraction(t *testing.T) {
	tests := []struct {
		name    string
		req     models.RecordInteractionRequest
		wantErr error
		invalid bool
	}{
		{
			name: "spot like",
			req:  models.RecordInteractionRequest{ContentID: "spot_1", ContentKind: "spot", Action: models.ActionLike},
		},
		{
			name: "spark view with location",
			req: models.RecordInteractionRequest{
				ContentID: "spark_1", ContentKind: "spark", Action: models.ActionView,
				Lat: float64Ptr(37.7), Lon: float64Ptr(-122.4),
			},
		},
		{
			name:    "unknown action",
			req:     models.RecordInteractionRequest{ContentID: "spot_1", ContentKind: "spot", Action: "bookmark"},
			invalid: true,
		},
		{
			name:    "unknown kind",
			req:     models.RecordInteractionRequest{ContentID: "x", ContentKind: "story", Action: models.ActionLike},
			invalid: true,
		},
		{
			name: "latitude out of range",
			req: models.RecordInteractionRequest{
				ContentID: "spot_1", ContentKind: "spot", Action: models.ActionLike,
				Lat: float64Ptr(91), Lon: float64Ptr(0),
			},
			wantErr: utils.ErrInvalidLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeInteractionStore{}
			svc := NewInteractionService(store, fixedClock(testNow))

			got, err := svc.RecordInteraction(context.Background(), "u1", tt.req)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("RecordInteraction() error = %v, expected %v", err, tt.wantErr)
				}
			case tt.invalid:
				if err == nil {
					t.Fatal("RecordInteraction() expected an error")
				}
			default:
				if err != nil {
					t.Fatalf("RecordInteraction() error = %v", err)
				}
				if got.UserID != "u1" || !got.CreatedAt.Equal(testNow) || got.ContentKind != tt.req.ContentKind {
					t.Errorf("RecordInteraction() = %+v", got)
				}
				if tt.req.Lat != nil && got.Latitude != *tt.req.Lat {
					t.Errorf("Latitude = %v, expected %v", got.Latitude, *tt.req.Lat)
				}
			}
			if stored := len(store.recorded); (err == nil) != (stored == 1) {
				t.Errorf("stored %d interactions with error %v", stored, err)
			}
		})
	}
}

func TestInteractionService_StoreErrorsWrap(t *testing.T) {
	store := &fakeInteractionStore{recordErr: database.ErrNotFound}
	svc := NewInteractionService(store, fixedClock(testNow))

	_, err := svc.RecordInteraction(context.Background(), "u1", models.RecordInteractionRequest{
		ContentID: "gone", ContentKind: "spot", Action: models.ActionShare,
	})
	if !errors.Is(err, database.ErrNotFound) {
		t.Errorf("RecordInteraction() error = %v, expected ErrNotFound", err)
	}

	if _, err := svc.RecordLocation(context.Background(), "u1", 10, 10); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("RecordLocation() error = %v, expected the store error", err)
	}
}

func TestInteractionService_RecordLocation(t *testing.T) {
	store := &fakeInteractionStore{}
	svc := NewInteractionService(store, fixedClock(testNow))

	loc, err := svc.RecordLocation(context.Background(), "u1", 37.7, -122.4)
	if err != nil {
		t.Fatalf("RecordLocation() error = %v", err)
	}
	if loc.UserID != "u1" || !loc.RecordedAt.Equal(testNow) || len(store.locs) != 1 {
		t.Errorf("RecordLocation() = %+v, stored %d", loc, len(store.locs))
	}

	if _, err := svc.RecordLocation(context.Background(), "u1", 0, 181); !errors.Is(err, utils.ErrInvalidLocation) {
		t.Errorf("RecordLocation(lon=181) error = %v, expected ErrInvalidLocation", err)
	}
}
