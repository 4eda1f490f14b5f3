package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemperature(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"valid", `{"current_condition":[{"temp_C":"-12","humidity":"80"}]}`, "-12", nil},
		{"empty array", `{"current_condition":[]}`, "", ErrNoConditions},
		{"missing array", `{"weather":[]}`, "", ErrNoConditions},
		{"missing field", `{"current_condition":[{"humidity":"80"}]}`, "", ErrNoConditions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTemperature([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseTemperature([]byte("<html>"))
	assert.Error(t, err)
}

func TestClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Novosibirsk" || r.URL.Query().Get("format") != "j1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_condition":[{"temp_C":"3"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", time.Second)

	temp, err := client.Current(context.Background(), "Novosibirsk")
	require.NoError(t, err)
	assert.Equal(t, "3", temp)

	_, err = client.Current(context.Background(), "Atlantis")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
