package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"spark-feed/database"
	"spark-feed/models"
	"spark-feed/utils"
)

func TestRecordInteraction(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		body   string
		err    error
		status int
		field  string
	}{
		{"like", "u1", `{"contentId":"spot_1","contentKind":"spot","action":"like"}`, nil, http.StatusCreated, ""},
		{"share with location", "u1", `{"contentId":"spark_1","contentKind":"spark","action":"share","lat":37.7,"lon":-122.4}`, nil, http.StatusCreated, ""},
		{"anonymous", "", `{"contentId":"spot_1","contentKind":"spot","action":"like"}`, nil, http.StatusUnauthorized, ""},
		{"missing content", "u1", `{"contentKind":"spot","action":"like"}`, nil, http.StatusBadRequest, "contentID"},
		{"unknown action", "u1", `{"contentId":"spot_1","contentKind":"spot","action":"bookmark"}`, nil, http.StatusBadRequest, "action"},
		{"unknown kind", "u1", `{"contentId":"x","contentKind":"story","action":"like"}`, nil, http.StatusBadRequest, "contentKind"},
		{"latitude without longitude", "u1", `{"contentId":"spot_1","contentKind":"spot","action":"like","lat":1}`, nil, http.StatusBadRequest, ""},
		{"malformed json", "u1", `{"contentId":`, nil, http.StatusBadRequest, ""},
		{"unknown content", "u1", `{"contentId":"gone","contentKind":"spot","action":"view"}`, fmt.Errorf("failed to record interaction: %w", database.ErrNotFound), http.StatusNotFound, ""},
		{"invalid location", "u1", `{"contentId":"spot_1","contentKind":"spot","action":"view","lat":0,"lon":0}`, utils.ErrInvalidLocation, http.StatusBadRequest, ""},
		{"store failure", "u1", `{"contentId":"spot_1","contentKind":"spot","action":"view"}`, errBoom, http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.recorder.err = tt.err

			w := s.do(t, http.MethodPost, "/interactions", tt.user, tt.body)
			expectStatus(t, w, tt.status)

			if tt.field != "" {
				resp := decode[models.ErrorResponse](t, w)
				if resp.Fields[tt.field] == "" {
					t.Errorf("fields = %v, expected an entry for %s", resp.Fields, tt.field)
				}
			}
			if tt.status == http.StatusCreated {
				got := decode[models.Interaction](t, w)
				if got.UserID != tt.user || s.recorder.userID != tt.user {
					t.Errorf("interaction = %+v, expected it recorded for %s", got, tt.user)
				}
			}
		})
	}
}

func TestRecordLocation(t *testing.T) {
	tests := []struct {
		name   string
		user   string
		body   string
		err    error
		status int
	}{
		{"recorded", "u1", `{"lat":37.7749,"lon":-122.4194}`, nil, http.StatusCreated},
		{"equator and meridian", "u1", `{"lat":0,"lon":0}`, nil, http.StatusCreated},
		{"anonymous", "", `{"lat":1,"lon":1}`, nil, http.StatusUnauthorized},
		{"missing longitude", "u1", `{"lat":1}`, nil, http.StatusBadRequest},
		{"longitude out of range", "u1", `{"lat":1,"lon":200}`, nil, http.StatusBadRequest},
		{"store failure", "u1", `{"lat":1,"lon":1}`, errBoom, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.recorder.err = tt.err

			w := s.do(t, http.MethodPost, "/locations", tt.user, tt.body)
			expectStatus(t, w, tt.status)

			if tt.status == http.StatusCreated {
				if loc := decode[models.UserLocation](t, w); loc.UserID != "u1" {
					t.Errorf("location = %+v", loc)
				}
			}
		})
	}
}
